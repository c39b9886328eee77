package scanner

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/aleister1102/burfisher/internal/artifact"
	"github.com/aleister1102/burfisher/internal/export"
	"github.com/aleister1102/burfisher/internal/findings"
	"github.com/aleister1102/burfisher/internal/locator"
	"github.com/aleister1102/burfisher/internal/trafficstore"
	"github.com/aleister1102/burfisher/pkg/shared"
	"github.com/aleister1102/burfisher/pkg/shared/config"
)

// errRequestNotFound is the user-visible error for ids absent from the
// traffic store.
const errRequestNotFound = "Request not found"

// Service owns the scan pipeline state for the process lifetime: the findings
// store, the traffic store handle, the binary locator, and the cached
// capability probe. It is the single context object behind the whole API; no
// package-level state exists.
type Service struct {
	cfg     *config.Config
	logger  hclog.Logger
	store   *findings.Store
	traffic trafficstore.Store
	locator locator.Locator
	runner  Runner
	writer  *artifact.Writer

	probeMu sync.Mutex
	probed  bool
	caps    Capabilities
}

// New builds a Service from the configuration. The scratch directory for
// artifacts is created eagerly so a misconfiguration surfaces at startup, not
// in the middle of a scan.
func New(cfg *config.Config, logger hclog.Logger, traffic trafficstore.Store, loc locator.Locator) (*Service, error) {
	writer, err := artifact.NewWriter(cfg.Scanner.ScratchDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare artifact scratch dir: %w", err)
	}
	return &Service{
		cfg:     cfg,
		logger:  logger,
		store:   findings.NewStore(),
		traffic: traffic,
		locator: loc,
		runner:  NewProcessRunner(logger),
		writer:  writer,
	}, nil
}

// Scan runs the full pipeline for the given request ids and returns exactly
// one result per id. Failures degrade to per-request error results; this
// method never returns an error itself.
func (s *Service) Scan(ctx context.Context, requestIDs []string) []findings.ScanResult {
	if len(requestIDs) == 0 {
		return nil
	}
	start := time.Now()

	binary, err := s.locator.Ensure()
	if err != nil {
		s.logger.Error("scanner binary unavailable", "error", err)
		s.store.RecordScan(len(requestIDs))
		return errorResults(requestIDs, fmt.Sprintf("secret scanner is not available: %v", err), time.Since(start))
	}

	caps := s.capabilities(ctx, binary)
	if caps.Version != "" {
		s.store.SetScannerVersion(caps.Version)
	}

	batches := chunk(requestIDs, s.cfg.Scanner.BatchSize)
	s.logger.Info("scan starting", "requests", len(requestIDs), "batches", len(batches), "max_parallel", s.cfg.Scanner.MaxParallel)

	perBatch := make([][]findings.ScanResult, len(batches))
	shared.ForEveryWithBoundedGoroutines(s.cfg.Scanner.MaxParallel, batches, func(i int, batch []string) {
		perBatch[i] = s.scanBatch(ctx, binary, caps, batch)
	})

	var results []findings.ScanResult
	for _, batchResults := range perBatch {
		results = append(results, batchResults...)
	}
	s.store.RecordScan(len(requestIDs))

	s.logger.Info("scan finished", "requests", len(requestIDs), "elapsed", time.Since(start))
	return results
}

// scanBatch writes one artifact per record, runs the scanner once over all of
// them, and correlates whatever came back. Artifact cleanup is registered
// before the subprocess call and runs on every exit path.
func (s *Service) scanBatch(ctx context.Context, binary string, caps Capabilities, requestIDs []string) []findings.ScanResult {
	start := time.Now()

	var mu sync.Mutex
	var failed []findings.ScanResult
	var paths []string
	artifacts := make(map[string]string) // artifact path -> request id

	shared.ForEveryWithBoundedGoroutines(len(requestIDs), requestIDs, func(_ int, id string) {
		rec, ok := s.traffic.Get(id)
		if !ok {
			mu.Lock()
			failed = append(failed, findings.ScanResult{
				RequestID: id,
				Error:     errRequestNotFound,
				Duration:  time.Since(start),
			})
			mu.Unlock()
			return
		}

		path, err := s.writer.Write(rec)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			s.logger.Error("artifact write failed", "request", id, "error", err)
			failed = append(failed, findings.ScanResult{
				RequestID: id,
				Error:     fmt.Sprintf("failed to write scan artifact: %v", err),
				Duration:  time.Since(start),
			})
			return
		}
		artifacts[path] = id
		paths = append(paths, path)
	})

	defer func() {
		s.writer.Cleanup(paths)
	}()

	if len(artifacts) == 0 {
		return failed
	}

	args := []string{"scan"}
	if caps.FormatFlag {
		args = append(args, "--format", "json")
	}
	outputPath := ""
	if caps.OutputFlag {
		outputPath = s.writer.OutputPath()
		args = append(args, "--output", outputPath)
	}
	args = append(args, s.cfg.Scanner.AdditionalArgs...)
	args = append(args, paths...)
	if outputPath != "" {
		// The report file lives in the scratch dir and is removed with the
		// artifacts.
		paths = append(paths, outputPath)
	}

	out, runErr := s.runner.Run(ctx, binary, args, s.cfg.Scanner.Timeout())
	elapsed := time.Since(start)

	var batchErr string
	switch {
	case runErr != nil:
		batchErr = fmt.Sprintf("failed to launch scanner: %v", runErr)
	case out.TimedOut:
		batchErr = fmt.Sprintf("scan timed out after %s", s.cfg.Scanner.Timeout())
	}

	// Partial output is still worth parsing, even after a timeout or a
	// non-zero exit.
	rawText := out.Stdout
	if outputPath != "" {
		if data, err := os.ReadFile(outputPath); err == nil && len(bytes.TrimSpace(data)) > 0 {
			rawText = string(data)
		}
	}

	raws := Parse(rawText)
	s.logger.Debug("batch parsed", "requests", len(artifacts), "raw_findings", len(raws), "exit_code", out.ExitCode, "timed_out", out.TimedOut)

	results := correlate(raws, artifacts, s.traffic, elapsed, batchErr, rawText)

	var stored []findings.Finding
	for _, result := range results {
		stored = append(stored, result.Findings...)
	}
	s.store.InsertMany(stored)

	return append(failed, results...)
}

// capabilities returns the memoized capability probe, running it on first
// use. InvalidateProbe drops the cache after the scanner binary changes.
func (s *Service) capabilities(ctx context.Context, binary string) Capabilities {
	s.probeMu.Lock()
	defer s.probeMu.Unlock()
	if !s.probed {
		s.caps = probeBinary(ctx, s.runner, binary)
		s.probed = true
		s.logger.Debug("scanner capabilities probed", "format_flag", s.caps.FormatFlag, "output_flag", s.caps.OutputFlag, "version", s.caps.Version)
	}
	return s.caps
}

// InvalidateProbe discards the cached capability probe. Call it after the
// scanner binary has been replaced or upgraded.
func (s *Service) InvalidateProbe() {
	s.probeMu.Lock()
	defer s.probeMu.Unlock()
	s.probed = false
	s.caps = Capabilities{}
}

// Findings returns all stored findings, newest first.
func (s *Service) Findings() []findings.Finding {
	return s.store.All()
}

// FindingsForRequest returns the stored findings for one request id.
func (s *Service) FindingsForRequest(requestID string) []findings.Finding {
	return s.store.ForRequest(requestID)
}

// RemoveFinding deletes one finding by id.
func (s *Service) RemoveFinding(id string) bool {
	return s.store.Remove(id)
}

// ClearFindings drops all stored findings and resets the counters.
func (s *Service) ClearFindings() {
	s.store.Clear()
}

// ExportFindings serializes the stored findings. Supported formats are
// "json" (the default) and "sarif". Secrets are always masked on export.
func (s *Service) ExportFindings(format string) ([]byte, error) {
	all := s.store.All()
	switch format {
	case "", export.FormatJSON:
		return export.JSON(all)
	case export.FormatSARIF:
		return export.SARIF(all)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// Stats returns the running scan counters.
func (s *Service) Stats() findings.Stats {
	return s.store.Stats()
}

// errorResults builds one failed result per request id.
func errorResults(requestIDs []string, message string, elapsed time.Duration) []findings.ScanResult {
	results := make([]findings.ScanResult, 0, len(requestIDs))
	for _, id := range requestIDs {
		results = append(results, findings.ScanResult{
			RequestID: id,
			Error:     message,
			Duration:  elapsed,
		})
	}
	return results
}

// chunk splits ids into contiguous batches of at most size elements.
func chunk(ids []string, size int) [][]string {
	if size < 1 {
		size = 1
	}
	var batches [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		batches = append(batches, ids[start:end])
	}
	return batches
}
