package config

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// Defaults applied when a field is absent from the configuration file.
const (
	DefaultScannerBinary  = "trufflehog"
	DefaultBatchSize      = 10
	DefaultMaxParallel    = 3
	DefaultTimeoutSeconds = 120
)

type Config struct {
	Logger  Logger  `yaml:"logger"`
	Scanner Scanner `yaml:"scanner"`
}

type Logger struct {
	Level string `yaml:"level"`
}

// Scanner holds the settings of the external secret scanner invocation.
type Scanner struct {
	Binary         string   `yaml:"binary"`          // Name or path of the scanner binary
	BatchSize      int      `yaml:"batch_size"`      // Number of requests scanned per subprocess call
	MaxParallel    int      `yaml:"max_parallel"`    // Maximum number of batches running concurrently
	TimeoutSeconds int      `yaml:"timeout_seconds"` // Wall-clock limit for one subprocess call
	ScratchDir     string   `yaml:"scratch_dir"`     // Directory for ephemeral scan artifacts
	AdditionalArgs []string `yaml:"additional_args"` // Extra arguments passed to the scanner
}

// Timeout returns the per-batch subprocess deadline.
func (s Scanner) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// ValidateConfigPath checks that the given path points at a regular file.
func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

// LoadYAML decodes a YAML file into data.
func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(data); err != nil {
		return err
	}
	return nil
}

// NewDefault returns a configuration populated with default values.
func NewDefault() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// LoadConfig reads the configuration file at configPath and fills unset fields
// with defaults. A missing file is not an error; defaults are returned instead.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	if err := LoadYAML(configPath, config); err != nil {
		if os.IsNotExist(err) {
			return NewDefault(), nil
		}
		return nil, err
	}

	config.ApplyDefaults()
	return config, nil
}

// ApplyDefaults fills unset fields with their default values.
func (c *Config) ApplyDefaults() {
	if c.Scanner.Binary == "" {
		c.Scanner.Binary = DefaultScannerBinary
	}
	if c.Scanner.BatchSize == 0 {
		c.Scanner.BatchSize = DefaultBatchSize
	}
	if c.Scanner.MaxParallel == 0 {
		c.Scanner.MaxParallel = DefaultMaxParallel
	}
	if c.Scanner.TimeoutSeconds == 0 {
		c.Scanner.TimeoutSeconds = DefaultTimeoutSeconds
	}
}

// ValidateConfig checks the loaded configuration for values the pipeline cannot work with.
func ValidateConfig(c *Config) error {
	if c.Scanner.BatchSize <= 0 {
		return fmt.Errorf("scanner.batch_size must be a positive integer, got %d", c.Scanner.BatchSize)
	}
	if c.Scanner.MaxParallel <= 0 {
		return fmt.Errorf("scanner.max_parallel must be a positive integer, got %d", c.Scanner.MaxParallel)
	}
	if c.Scanner.TimeoutSeconds <= 0 {
		return fmt.Errorf("scanner.timeout_seconds must be a positive integer, got %d", c.Scanner.TimeoutSeconds)
	}
	return nil
}
