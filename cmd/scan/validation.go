package scan

import (
	"fmt"
	"os"

	"github.com/aleister1102/burfisher/internal/export"
)

// validateScanArgs validates the arguments provided to the scan command.
func validateScanArgs(options *RunOptionsScan) error {
	if options.InputFile == "" {
		return fmt.Errorf("the 'input-file' flag must be specified")
	}
	if _, err := os.Stat(options.InputFile); os.IsNotExist(err) {
		return fmt.Errorf("the input file does not exist: %v", options.InputFile)
	}

	if options.Format != "" && options.Format != export.FormatJSON && options.Format != export.FormatSARIF {
		return fmt.Errorf("unsupported report format %q, expected %q or %q", options.Format, export.FormatJSON, export.FormatSARIF)
	}

	if options.BatchSize < 0 {
		return fmt.Errorf("the 'batch-size' flag must be a positive integer")
	}
	if options.Threads < 0 {
		return fmt.Errorf("the 'threads' flag must be a positive integer")
	}
	if options.Timeout < 0 {
		return fmt.Errorf("the 'timeout' flag must be a positive integer")
	}
	return nil
}
