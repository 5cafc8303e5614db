package config

import (
	"errors"
	"fmt"
)

// ValidationResult holds config validation results.
type ValidationResult struct {
	Errors   []string
	Warnings []string
}

// ValidateDetailed performs config validation with hints for the CLI.
func (c *Config) ValidateDetailed() *ValidationResult {
	result := &ValidationResult{}

	if _, err := ParseLogLevel(string(c.Log)); err != nil {
		if errors.Is(err, ErrInvalidLogLevel) {
			result.Errors = append(result.Errors,
				fmt.Sprintf("log: invalid value %q, must be none, info or debug", c.Log))
		} else {
			result.Errors = append(result.Errors, "log: "+err.Error())
		}
	}

	if c.Log == LogDebug {
		result.Warnings = append(result.Warnings,
			"log: debug renders every processed class, expect large output on big projects")
	}

	return result
}

// IsValid returns true if there are no errors.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}
