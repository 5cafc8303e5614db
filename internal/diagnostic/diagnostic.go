// Package diagnostic collects the warnings and errors reported while
// transforming files, so the CLI can print them together.
package diagnostic

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Category classifies diagnostics for filtering.
type Category string

const (
	CategorySyntax           Category = "syntax"
	CategoryConfigInvalid    Category = "config-invalid"
	CategoryUnsupportedFile  Category = "unsupported-file"
	CategoryAlreadyProcessed Category = "already-processed"
	CategoryIO               Category = "io"
)

// Diagnostic represents a structured diagnostic message.
type Diagnostic struct {
	Severity Severity
	Category Category
	File     string // source file path
	Line     int    // 1-based line number (0 = unknown)
	Column   int    // 1-based column number (0 = unknown)
	Message  string
	Hint     string // optional suggestion for fixing the issue
}

// String formats the diagnostic for display.
func (d Diagnostic) String() string {
	var sb strings.Builder

	// File location
	if d.File != "" {
		sb.WriteString(d.File)
		if d.Line > 0 {
			sb.WriteString(fmt.Sprintf(":%d", d.Line))
			if d.Column > 0 {
				sb.WriteString(fmt.Sprintf(":%d", d.Column))
			}
		}
		sb.WriteString(" - ")
	}

	// Severity
	sb.WriteString(d.Severity.String())
	sb.WriteString(": ")

	// Category
	if d.Category != "" {
		sb.WriteString("[")
		sb.WriteString(string(d.Category))
		sb.WriteString("] ")
	}

	// Message
	sb.WriteString(d.Message)

	// Hint
	if d.Hint != "" {
		sb.WriteString("\n  hint: ")
		sb.WriteString(d.Hint)
	}

	return sb.String()
}

// Collector collects diagnostics during a run. It is safe for concurrent use.
type Collector struct {
	mu          sync.Mutex
	diagnostics []Diagnostic
	strict      bool // if true, warnings become errors
	quiet       bool // if true, suppress warnings
}

// NewCollector creates a new diagnostic collector.
func NewCollector(strict, quiet bool) *Collector {
	return &Collector{
		strict: strict,
		quiet:  quiet,
	}
}

// Warn adds a warning diagnostic.
func (c *Collector) Warn(category Category, file string, line int, message string) {
	if c == nil || c.quiet {
		return
	}
	c.add(Diagnostic{
		Severity: c.warningSeverity(),
		Category: category,
		File:     file,
		Line:     line,
		Message:  message,
	})
}

// WarnWithHint adds a warning with a suggestion.
func (c *Collector) WarnWithHint(category Category, file string, line int, message, hint string) {
	if c == nil || c.quiet {
		return
	}
	c.add(Diagnostic{
		Severity: c.warningSeverity(),
		Category: category,
		File:     file,
		Line:     line,
		Message:  message,
		Hint:     hint,
	})
}

// Add records d as is. Warnings still follow the strict and quiet settings.
func (c *Collector) Add(d Diagnostic) {
	if c == nil {
		return
	}
	switch d.Severity {
	case SeverityWarning:
		if c.quiet {
			return
		}
		d.Severity = c.warningSeverity()
	case SeverityInfo:
		if c.quiet {
			return
		}
	}
	c.add(d)
}

func (c *Collector) warningSeverity() Severity {
	if c.strict {
		return SeverityError
	}
	return SeverityWarning
}

func (c *Collector) add(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diagnostics = append(c.diagnostics, d)
}

// Error adds an error diagnostic.
func (c *Collector) Error(category Category, file string, line int, message string) {
	if c == nil {
		return
	}
	c.add(Diagnostic{
		Severity: SeverityError,
		Category: category,
		File:     file,
		Line:     line,
		Message:  message,
	})
}

// Info adds an informational diagnostic.
func (c *Collector) Info(category Category, file string, line int, message string) {
	if c == nil || c.quiet {
		return
	}
	c.add(Diagnostic{
		Severity: SeverityInfo,
		Category: category,
		File:     file,
		Line:     line,
		Message:  message,
	})
}

// Diagnostics returns the collected diagnostics ordered by file, line and
// column. Diagnostics of the same location keep their insertion order.
func (c *Collector) Diagnostics() []Diagnostic {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	out := slices.Clone(c.diagnostics)
	c.mu.Unlock()
	slices.SortStableFunc(out, func(a, b Diagnostic) int {
		return cmp.Or(
			cmp.Compare(a.File, b.File),
			cmp.Compare(a.Line, b.Line),
			cmp.Compare(a.Column, b.Column),
		)
	})
	return out
}

func (c *Collector) count(sev Severity) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, d := range c.diagnostics {
		if d.Severity == sev {
			count++
		}
	}
	return count
}

// HasErrors returns true if any error-level diagnostics exist.
func (c *Collector) HasErrors() bool {
	return c.ErrorCount() > 0
}

// ErrorCount returns the number of error diagnostics.
func (c *Collector) ErrorCount() int {
	if c == nil {
		return 0
	}
	return c.count(SeverityError)
}

// WarningCount returns the number of warning diagnostics.
func (c *Collector) WarningCount() int {
	if c == nil {
		return 0
	}
	return c.count(SeverityWarning)
}

// FormatAll formats all diagnostics as a multi-line string.
func (c *Collector) FormatAll() string {
	diags := c.Diagnostics()
	if len(diags) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, d := range diags {
		sb.WriteString(d.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// Summary returns a summary line like "2 warning(s), 1 error(s)".
func (c *Collector) Summary() string {
	if c == nil {
		return ""
	}
	warnings := c.WarningCount()
	errors := c.ErrorCount()

	parts := []string{}
	if errors > 0 {
		parts = append(parts, fmt.Sprintf("%d error(s)", errors))
	}
	if warnings > 0 {
		parts = append(parts, fmt.Sprintf("%d warning(s)", warnings))
	}
	if len(parts) == 0 {
		return "no issues"
	}
	return strings.Join(parts, ", ")
}
