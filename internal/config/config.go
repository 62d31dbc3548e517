// Package config holds run settings for linefilter and loads optional
// defaults from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigErrorType represents the type of configuration error.
type ConfigErrorType string

const (
	FileNotFound    ConfigErrorType = "FILE_NOT_FOUND"
	InvalidYAML     ConfigErrorType = "INVALID_YAML"
	ValidationError ConfigErrorType = "VALIDATION_ERROR"
)

// ConfigError represents an error in the configuration. It is always fatal
// and is raised before any input is read.
type ConfigError struct {
	Type    ConfigErrorType
	Path    string
	Message string
}

func (e *ConfigError) Error() string {
	switch e.Type {
	case FileNotFound:
		return fmt.Sprintf("configuration file not found: %s", e.Path)
	case InvalidYAML:
		return fmt.Sprintf("invalid YAML in configuration file %s: %s", e.Path, e.Message)
	case ValidationError:
		return fmt.Sprintf("configuration validation error: %s", e.Message)
	default:
		return fmt.Sprintf("configuration error: %s", e.Message)
	}
}

// Stats modes accepted in the defaults file.
const (
	StatsNone  = ""
	StatsShort = "short"
	StatsFull  = "full"
)

// Configuration holds all settings for one run.
type Configuration struct {
	OutputDir  string   // Directory for the output files (default ".")
	Prefix     string   // Prepended to every output file name
	Append     bool     // Append to existing output files instead of overwriting
	ShortStats bool     // Report counts per kind
	FullStats  bool     // Report counts plus min/max/sum/average or length extremes
	InputFiles []string // Ordered list of files to read
}

// Default returns the configuration used when nothing is specified.
func Default() *Configuration {
	return &Configuration{OutputDir: "."}
}

// ReportRequested returns true if any statistics report was asked for.
func (c *Configuration) ReportRequested() bool {
	return c.ShortStats || c.FullStats
}

// Validate checks the fields that make a run impossible.
func (c *Configuration) Validate() error {
	if len(c.InputFiles) == 0 {
		return &ConfigError{
			Type:    ValidationError,
			Message: "no input files given",
		}
	}
	return nil
}

// fileDefaults mirrors the YAML defaults file.
type fileDefaults struct {
	OutputDir string `yaml:"output_dir"`
	Prefix    string `yaml:"prefix"`
	Append    bool   `yaml:"append"`
	Stats     string `yaml:"stats"`
}

// Load reads a YAML defaults file and returns the configuration it
// describes. Input files are never taken from the file.
func Load(filePath string) (*Configuration, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ConfigError{Type: FileNotFound, Path: filePath}
		}
		return nil, &ConfigError{
			Type:    FileNotFound,
			Path:    filePath,
			Message: err.Error(),
		}
	}
	return Parse(filePath, data)
}

// Parse decodes YAML defaults. filePath is only used in error messages.
func Parse(filePath string, data []byte) (*Configuration, error) {
	var fd fileDefaults
	if err := yaml.Unmarshal(data, &fd); err != nil {
		return nil, &ConfigError{
			Type:    InvalidYAML,
			Path:    filePath,
			Message: err.Error(),
		}
	}

	cfg := Default()
	if fd.OutputDir != "" {
		cfg.OutputDir = fd.OutputDir
	}
	cfg.Prefix = fd.Prefix
	cfg.Append = fd.Append

	switch strings.ToLower(fd.Stats) {
	case StatsNone:
	case StatsShort:
		cfg.ShortStats = true
	case StatsFull:
		cfg.FullStats = true
	default:
		return nil, &ConfigError{
			Type:    ValidationError,
			Message: fmt.Sprintf("stats must be %q, %q or empty, got %q", StatsShort, StatsFull, fd.Stats),
		}
	}

	return cfg, nil
}
