package config

import (
	"os"
	"path/filepath"
	"strconv"
)

// ValidationSeverity represents the severity of a validation issue.
type ValidationSeverity string

const (
	SeverityError   ValidationSeverity = "error"
	SeverityWarning ValidationSeverity = "warning"
)

// ConfigValidationError represents a single validation issue.
type ConfigValidationError struct {
	Field    string             // Setting with the issue, e.g. "inputFiles[1]"
	Message  string             // Human-readable description
	Severity ValidationSeverity // "error" or "warning"
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	Errors   []ConfigValidationError
	Warnings []ConfigValidationError
	Valid    bool // True if no errors (warnings OK)
}

// ValidateConfig inspects the filesystem around a configuration. Errors
// stop the run; warnings are reported and the run continues.
func ValidateConfig(cfg *Configuration) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ConfigValidationError{},
		Warnings: []ConfigValidationError{},
	}

	var findings []ConfigValidationError
	findings = append(findings, ValidateOutputDir(cfg)...)
	findings = append(findings, ValidateInputFiles(cfg)...)
	findings = append(findings, ValidateStatsModes(cfg)...)

	for _, f := range findings {
		if f.Severity == SeverityError {
			result.Errors = append(result.Errors, f)
		} else {
			result.Warnings = append(result.Warnings, f)
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// ValidateOutputDir rejects an output directory that exists but is not a
// directory. A missing directory is fine: it is created on first write.
func ValidateOutputDir(cfg *Configuration) []ConfigValidationError {
	info, err := os.Stat(cfg.OutputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return []ConfigValidationError{{
			Field:    "outputDir",
			Message:  "error accessing output directory: " + err.Error(),
			Severity: SeverityWarning,
		}}
	}
	if !info.IsDir() {
		return []ConfigValidationError{{
			Field:    "outputDir",
			Message:  "path exists but is not a directory: " + cfg.OutputDir,
			Severity: SeverityError,
		}}
	}
	return nil
}

// ValidateInputFiles warns about inputs that cannot be read and inputs
// listed more than once. Neither stops the run.
func ValidateInputFiles(cfg *Configuration) []ConfigValidationError {
	var findings []ConfigValidationError

	seen := make(map[string]int)
	for i, path := range cfg.InputFiles {
		key := filepath.Clean(path)
		if first, dup := seen[key]; dup {
			findings = append(findings, ConfigValidationError{
				Field:    formatField("inputFiles", i),
				Message:  "input file listed twice (first at position " + strconv.Itoa(first+1) + "): " + path,
				Severity: SeverityWarning,
			})
		} else {
			seen[key] = i
		}

		info, err := os.Stat(path)
		switch {
		case os.IsNotExist(err):
			findings = append(findings, ConfigValidationError{
				Field:    formatField("inputFiles", i),
				Message:  "input file does not exist: " + path,
				Severity: SeverityWarning,
			})
		case err != nil:
			findings = append(findings, ConfigValidationError{
				Field:    formatField("inputFiles", i),
				Message:  "input file is not accessible: " + err.Error(),
				Severity: SeverityWarning,
			})
		case info.IsDir():
			findings = append(findings, ConfigValidationError{
				Field:    formatField("inputFiles", i),
				Message:  "input path is a directory: " + path,
				Severity: SeverityWarning,
			})
		}
	}

	return findings
}

// ValidateStatsModes notes that full statistics already include the counts
// short statistics would print.
func ValidateStatsModes(cfg *Configuration) []ConfigValidationError {
	if cfg.ShortStats && cfg.FullStats {
		return []ConfigValidationError{{
			Field:    "stats",
			Message:  "both short and full statistics requested; full statistics will be shown",
			Severity: SeverityWarning,
		}}
	}
	return nil
}

func formatField(name string, index int) string {
	return name + "[" + strconv.Itoa(index) + "]"
}
