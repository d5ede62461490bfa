package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gocausal/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Model     string
	Sampling  SamplingConfig
	Output    OutputConfig
	Replicate ReplicateConfig
	LogLevel  string
}

// SamplingConfig holds the size and seed of a draw
type SamplingConfig struct {
	Rows int
	Seed uint64
}

// OutputConfig holds where and how tables are written
type OutputConfig struct {
	// Path is empty for stdout.
	Path   string
	Format string
}

// ReplicateConfig holds replicate-study settings
type ReplicateConfig struct {
	Count   int
	Workers int
}

// Supported output formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	seed, err := getEnvUintOrDefault("CAUSALSIM_SEED", 42)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load sampling configuration")
	}

	config := &Config{
		Model: getEnvOrDefault("CAUSALSIM_MODEL", "basic"),
		Sampling: SamplingConfig{
			Rows: getEnvIntOrDefault("CAUSALSIM_ROWS", 100),
			Seed: seed,
		},
		Output: loadOutputConfig(),
		Replicate: ReplicateConfig{
			Count:   getEnvIntOrDefault("CAUSALSIM_REPLICATES", 10),
			Workers: getEnvIntOrDefault("CAUSALSIM_WORKERS", 4),
		},
		LogLevel: strings.ToUpper(getEnvOrDefault("LOG_LEVEL", "INFO")),
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadOutputConfig() OutputConfig {
	path := getEnvOrDefault("CAUSALSIM_OUTPUT", "")
	return OutputConfig{
		Path:   path,
		Format: strings.ToLower(getEnvOrDefault("CAUSALSIM_FORMAT", InferFormat(path))),
	}
}

// InferFormat picks the output format from a file extension, defaulting to CSV.
func InferFormat(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return FormatXLSX
	}
	return FormatCSV
}

// Validate checks ranges and enumerations. Flags overriding a loaded config
// should call it again.
func (c *Config) Validate() error {
	if c.Model == "" {
		return errors.ConfigInvalid("model name is required")
	}
	if c.Sampling.Rows < 0 {
		return errors.ConfigInvalid(fmt.Sprintf("rows must be non-negative, got %d", c.Sampling.Rows))
	}
	if c.Output.Format != FormatCSV && c.Output.Format != FormatXLSX {
		return errors.ConfigInvalid(fmt.Sprintf("unknown output format %q", c.Output.Format))
	}
	if c.Output.Format == FormatXLSX && c.Output.Path == "" {
		return errors.ConfigInvalid("xlsx output needs a file path")
	}
	if c.Replicate.Count < 1 {
		return errors.ConfigInvalid(fmt.Sprintf("replicates must be positive, got %d", c.Replicate.Count))
	}
	if c.Replicate.Workers < 1 {
		return errors.ConfigInvalid(fmt.Sprintf("workers must be positive, got %d", c.Replicate.Workers))
	}
	switch c.LogLevel {
	case "ERROR", "WARN", "INFO", "DEBUG", "TRACE":
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown log level %q", c.LogLevel))
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvUintOrDefault(key string, defaultValue uint64) (uint64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s must be an unsigned integer, got %q", key, value))
	}
	return v, nil
}
