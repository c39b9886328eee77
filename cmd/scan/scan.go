package scan

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aleister1102/burfisher/internal/locator"
	"github.com/aleister1102/burfisher/internal/logger"
	"github.com/aleister1102/burfisher/internal/scanner"
	"github.com/aleister1102/burfisher/internal/trafficstore"
	"github.com/aleister1102/burfisher/pkg/shared/config"
)

// RunOptionsScan holds the arguments for the scan command.
type RunOptionsScan struct {
	InputFile  string
	RequestIDs []string
	Output     string
	Format     string
	Binary     string
	BatchSize  int
	Threads    int
	Timeout    int
}

// Global variables for configuration and command arguments
var (
	AppConfig        *config.Config
	scanOptions      RunOptionsScan
	exampleScanUsage = `  # Scanning every transaction in a captured traffic file
  burfisher scan --input-file traffic.json

  # Scanning selected transactions only
  burfisher scan --input-file traffic.json --id req-1 --id req-7

  # Writing a SARIF report instead of printing JSON to stdout
  burfisher scan --input-file traffic.json --format sarif --output findings.sarif

  # Using a specific scanner binary with four batches in flight
  burfisher scan --input-file traffic.json --binary /opt/trufflehog/trufflehog -j 4`
)

// ScanCmd represents the scan command.
var ScanCmd = &cobra.Command{
	Use:                   "scan --input-file/-i PATH [--id REQUEST_ID]... [--format/-f json|sarif] [--output/-o PATH]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleScanUsage,
	Short:                 "Scans captured HTTP transactions for secrets with the external scanner",
	RunE:                  runScanCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runScanCommand executes the scan command.
func runScanCommand(cmd *cobra.Command, args []string) error {
	if err := validateScanArgs(&scanOptions); err != nil {
		return err
	}
	applyOptionOverrides(AppConfig, &scanOptions)

	log := logger.NewLogger(AppConfig, "core-scan")

	traffic, err := trafficstore.LoadFile(scanOptions.InputFile)
	if err != nil {
		log.Error("failed to load traffic file", "error", err)
		return err
	}

	requestIDs := scanOptions.RequestIDs
	if len(requestIDs) == 0 {
		requestIDs = traffic.IDs()
	}
	if len(requestIDs) == 0 {
		return fmt.Errorf("traffic file %q contains no transactions", scanOptions.InputFile)
	}

	loc := locator.NewPathLocator(AppConfig.Scanner.Binary, log)
	service, err := scanner.New(AppConfig, log, traffic, loc)
	if err != nil {
		log.Error("failed to initialize scan service", "error", err)
		return err
	}

	results := service.Scan(cmd.Context(), requestIDs)

	var failures int
	for _, result := range results {
		if result.Error != "" {
			failures++
			log.Warn("request not scanned", "request", result.RequestID, "error", result.Error)
		}
	}

	stats := service.Stats()
	log.Info("scan completed", "requests", stats.TotalScanned, "findings", stats.TotalFindings, "failures", failures, "scanner_version", stats.ScannerVersion)

	report, err := service.ExportFindings(scanOptions.Format)
	if err != nil {
		return err
	}

	if scanOptions.Output == "" {
		fmt.Println(string(report))
		return nil
	}
	if err := os.WriteFile(scanOptions.Output, report, 0o644); err != nil {
		return fmt.Errorf("failed to write report to %q: %w", scanOptions.Output, err)
	}
	log.Info("report saved", "path", scanOptions.Output, "format", scanOptions.Format)
	return nil
}

// applyOptionOverrides lets command-line flags win over the configuration file.
func applyOptionOverrides(cfg *config.Config, options *RunOptionsScan) {
	if options.Binary != "" {
		cfg.Scanner.Binary = options.Binary
	}
	if options.BatchSize > 0 {
		cfg.Scanner.BatchSize = options.BatchSize
	}
	if options.Threads > 0 {
		cfg.Scanner.MaxParallel = options.Threads
	}
	if options.Timeout > 0 {
		cfg.Scanner.TimeoutSeconds = options.Timeout
	}
}

// Initialize flags for the scan command.
func init() {
	ScanCmd.Flags().StringVarP(&scanOptions.InputFile, "input-file", "i", "", "Path to a JSON file with captured HTTP transactions to scan.")
	ScanCmd.Flags().StringArrayVar(&scanOptions.RequestIDs, "id", nil, "Request id to scan. May be repeated; defaults to every transaction in the input file.")
	ScanCmd.Flags().StringVarP(&scanOptions.Output, "output", "o", "", "Path of the report file. Prints to stdout when omitted.")
	ScanCmd.Flags().StringVarP(&scanOptions.Format, "format", "f", "json", "Report format: json or sarif.")
	ScanCmd.Flags().StringVar(&scanOptions.Binary, "binary", "", "Name or path of the scanner binary, overriding the configuration file.")
	ScanCmd.Flags().IntVar(&scanOptions.BatchSize, "batch-size", 0, "Number of requests scanned per scanner invocation.")
	ScanCmd.Flags().IntVarP(&scanOptions.Threads, "threads", "j", 0, "Maximum number of scanner invocations running concurrently.")
	ScanCmd.Flags().IntVar(&scanOptions.Timeout, "timeout", 0, "Per-batch scanner timeout in seconds.")
	ScanCmd.Flags().BoolP("help", "h", false, "Show help for the scan command.")
}
