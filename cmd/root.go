package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aleister1102/burfisher/cmd/scan"
	"github.com/aleister1102/burfisher/cmd/version"
	"github.com/aleister1102/burfisher/pkg/shared/config"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "burfisher [command]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Burfisher scans captured HTTP traffic for embedded secrets.",
		Long: `Burfisher drives an external secret scanner over captured HTTP transactions,
	then normalizes, correlates, and reports the findings.
	`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yml)")
	rootCmd.AddCommand(scan.ScanCmd)
	rootCmd.AddCommand(version.NewVersionCmd())
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		return 1
	}
	return 0
}

func initConfig() {
	var err error

	if cfgFile == "" {
		cfgFile = "config.yml"
	}
	AppConfig, err = config.LoadConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config %q: %v\n", cfgFile, err)
		os.Exit(1)
	}
	if err := config.ValidateConfig(AppConfig); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	scan.Init(AppConfig)
}
