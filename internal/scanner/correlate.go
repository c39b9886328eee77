package scanner

import (
	"time"

	"github.com/aleister1102/burfisher/internal/findings"
	"github.com/aleister1102/burfisher/internal/trafficstore"
)

// correlate maps parsed findings back to the records they came from via the
// artifact path each finding was attributed to, and builds exactly one
// ScanResult per record that was handed to the subprocess. Findings that
// reference a path outside the batch are dropped: the scanner is expected to
// echo the artifact path verbatim.
func correlate(
	raws []RawFinding,
	artifacts map[string]string,
	traffic trafficstore.Store,
	elapsed time.Duration,
	batchErr string,
	rawOutput string,
) []findings.ScanResult {
	byPath := make(map[string][]RawFinding)
	for _, raw := range raws {
		byPath[raw.Path] = append(byPath[raw.Path], raw)
	}

	results := make([]findings.ScanResult, 0, len(artifacts))
	for path, requestID := range artifacts {
		var url, method string
		if rec, ok := traffic.Get(requestID); ok {
			url = rec.URL
			method = rec.Method
		}

		result := findings.ScanResult{
			RequestID: requestID,
			Duration:  elapsed,
			Error:     batchErr,
		}
		for _, raw := range byPath[path] {
			result.Findings = append(result.Findings, normalizeFinding(raw, requestID, url, method))
		}
		if batchErr != "" {
			result.RawOutput = rawOutput
		}
		results = append(results, result)
	}
	return results
}

// normalizeFinding converts one raw scanner result into the stable schema:
// three-level confidence, masked snippet, and a fresh identifier.
func normalizeFinding(raw RawFinding, requestID, url, method string) findings.Finding {
	f := findings.Finding{
		ID:         findings.NewID(),
		RequestID:  requestID,
		URL:        url,
		Method:     method,
		DetectedAt: time.Now().UTC(),
		Rule: findings.Rule{
			ID:         raw.RuleID,
			Name:       raw.RuleName,
			Confidence: findings.NormalizeConfidence(raw.Confidence),
		},
		Secret: findings.Secret{
			Masked:       findings.MaskSecret(raw.Secret),
			Unmasked:     raw.Secret,
			ArtifactPath: raw.Path,
			Fingerprint:  raw.Fingerprint,
		},
	}
	if raw.Validation != nil {
		f.Validation = &findings.Validation{
			Status:   raw.Validation.Status,
			Response: raw.Validation.Response,
		}
	}
	return f
}
