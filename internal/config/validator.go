package config

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "bench.insert_ratio")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidLogFormats returns the list of valid log output formats
func ValidLogFormats() []string {
	return []string{"text", "json"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate Bench config
	errors = append(errors, c.validateBench()...)

	// Validate Store config
	errors = append(errors, c.validateStore()...)

	// Validate Lock config
	errors = append(errors, c.validateLock()...)

	// Validate Logging config
	errors = append(errors, c.validateLogging()...)

	return errors
}

// validateBench validates the BenchConfig
func (c *Config) validateBench() []ValidationError {
	var errors []ValidationError

	if c.Bench.Scenario == "" {
		errors = append(errors, ValidationError{
			Field:   "bench.scenario",
			Value:   c.Bench.Scenario,
			Message: "cannot be empty (preset name or path to a scenario file)",
		})
	}

	// Worker count validation (0 means use the scenario's worker count)
	const maxWorkers = 4096
	if c.Bench.Workers < 0 {
		errors = append(errors, ValidationError{
			Field:   "bench.workers",
			Value:   c.Bench.Workers,
			Message: "must be non-negative (0 uses the scenario's worker count)",
		})
	}
	if c.Bench.Workers > maxWorkers {
		errors = append(errors, ValidationError{
			Field:   "bench.workers",
			Value:   c.Bench.Workers,
			Message: fmt.Sprintf("exceeds maximum of %d", maxWorkers),
		})
	}

	// Duration validation
	const maxDuration = 24 * time.Hour
	if c.Bench.Duration <= 0 {
		errors = append(errors, ValidationError{
			Field:   "bench.duration",
			Value:   c.Bench.Duration,
			Message: "must be positive",
		})
	}
	if c.Bench.Duration > maxDuration {
		errors = append(errors, ValidationError{
			Field:   "bench.duration",
			Value:   c.Bench.Duration,
			Message: fmt.Sprintf("exceeds maximum of %v", maxDuration),
		})
	}

	if c.Bench.Locker != "" && !IsValidLocker(c.Bench.Locker) {
		errors = append(errors, ValidationError{
			Field:   "bench.locker",
			Value:   c.Bench.Locker,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLockers(), ", ")),
		})
	}

	// Operation mix validation
	if c.Bench.InsertRatio < 0 || c.Bench.InsertRatio > 1 {
		errors = append(errors, ValidationError{
			Field:   "bench.insert_ratio",
			Value:   c.Bench.InsertRatio,
			Message: "must be between 0 and 1",
		})
	}
	if c.Bench.FindRatio < 0 || c.Bench.FindRatio > 1 {
		errors = append(errors, ValidationError{
			Field:   "bench.find_ratio",
			Value:   c.Bench.FindRatio,
			Message: "must be between 0 and 1",
		})
	}
	if c.Bench.InsertRatio >= 0 && c.Bench.FindRatio >= 0 &&
		c.Bench.InsertRatio+c.Bench.FindRatio > 1 {
		errors = append(errors, ValidationError{
			Field:   "bench.find_ratio",
			Value:   c.Bench.FindRatio,
			Message: fmt.Sprintf("insert_ratio + find_ratio must not exceed 1 (insert_ratio is %v)", c.Bench.InsertRatio),
		})
	}

	// Critical-section spin validation (0 means disabled)
	const maxCSSpin = time.Second
	if c.Bench.CSSpin < 0 {
		errors = append(errors, ValidationError{
			Field:   "bench.cs_spin",
			Value:   c.Bench.CSSpin,
			Message: "must be non-negative (0 disables the spin)",
		})
	}
	if c.Bench.CSSpin > maxCSSpin {
		errors = append(errors, ValidationError{
			Field:   "bench.cs_spin",
			Value:   c.Bench.CSSpin,
			Message: fmt.Sprintf("exceeds maximum of %v", maxCSSpin),
		})
	}

	// Think-time validation (think_every 0 means never think)
	if c.Bench.ThinkEvery < 0 {
		errors = append(errors, ValidationError{
			Field:   "bench.think_every",
			Value:   c.Bench.ThinkEvery,
			Message: "must be non-negative (0 disables think time)",
		})
	}
	if c.Bench.ThinkFor < 0 {
		errors = append(errors, ValidationError{
			Field:   "bench.think_for",
			Value:   c.Bench.ThinkFor,
			Message: "must be non-negative",
		})
	}

	if c.Bench.Seed < 0 {
		errors = append(errors, ValidationError{
			Field:   "bench.seed",
			Value:   c.Bench.Seed,
			Message: "must be non-negative (0 derives a seed from the clock)",
		})
	}

	return errors
}

// validateStore validates the StoreConfig
func (c *Config) validateStore() []ValidationError {
	var errors []ValidationError

	if c.Store.Engine != "" && !IsValidStoreEngine(c.Store.Engine) {
		errors = append(errors, ValidationError{
			Field:   "store.engine",
			Value:   c.Store.Engine,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidStoreEngines(), ", ")),
		})
	}

	// Value size validation
	const minValueSize = 1
	const maxValueSize = 1_048_576 // 1MB
	if c.Store.ValueSize < minValueSize {
		errors = append(errors, ValidationError{
			Field:   "store.value_size",
			Value:   c.Store.ValueSize,
			Message: fmt.Sprintf("must be at least %d byte", minValueSize),
		})
	}
	if c.Store.ValueSize > maxValueSize {
		errors = append(errors, ValidationError{
			Field:   "store.value_size",
			Value:   c.Store.ValueSize,
			Message: fmt.Sprintf("exceeds maximum of %d bytes (1MB)", maxValueSize),
		})
	}

	// Path validation - if set, check for invalid characters
	if c.Store.Path != "" {
		path := c.Store.Path

		// Check for null bytes which are invalid in paths
		if strings.ContainsRune(path, '\x00') {
			errors = append(errors, ValidationError{
				Field:   "store.path",
				Value:   path,
				Message: "path contains invalid null character",
			})
		}

		// Reasonable path length limit (most filesystems have limits around 4096)
		const maxPathLength = 4096
		if len(path) > maxPathLength {
			errors = append(errors, ValidationError{
				Field:   "store.path",
				Value:   path,
				Message: fmt.Sprintf("path exceeds maximum length of %d characters", maxPathLength),
			})
		}

		if c.Store.Engine == "memory" {
			errors = append(errors, ValidationError{
				Field:   "store.path",
				Value:   path,
				Message: "only valid with the sqlite engine",
			})
		}
	}

	return errors
}

// validateLock validates the LockConfig
func (c *Config) validateLock() []ValidationError {
	var errors []ValidationError

	const maxSlice = 10 * time.Second
	if c.Lock.Slice <= 0 {
		errors = append(errors, ValidationError{
			Field:   "lock.slice",
			Value:   c.Lock.Slice,
			Message: "must be positive",
		})
	}
	if c.Lock.Slice > maxSlice {
		errors = append(errors, ValidationError{
			Field:   "lock.slice",
			Value:   c.Lock.Slice,
			Message: fmt.Sprintf("exceeds maximum of %v", maxSlice),
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	// Validate log level
	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	// Validate log format
	if c.Logging.Format != "" && !slices.Contains(ValidLogFormats(), c.Logging.Format) {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Value:   c.Logging.Format,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogFormats(), ", ")),
		})
	}

	// File validation - if set, check for invalid characters
	if c.Logging.File != "" {
		if strings.ContainsRune(c.Logging.File, '\x00') {
			errors = append(errors, ValidationError{
				Field:   "logging.file",
				Value:   c.Logging.File,
				Message: "path contains invalid null character",
			})
		}
	}

	return errors
}
