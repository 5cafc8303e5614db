// Package printer renders program tree nodes as TypeScript source.
package printer

import (
	"fmt"
	"strings"
)

// Emitter builds source code with proper indentation.
type Emitter struct {
	buf    strings.Builder
	prefix string
	unit   string
	indent int
}

// NewEmitter creates an emitter whose lines all start with prefix and nest
// by unit (two spaces when empty).
func NewEmitter(prefix, unit string) *Emitter {
	if unit == "" {
		unit = "  "
	}
	return &Emitter{prefix: prefix, unit: unit}
}

func (e *Emitter) writeIndent() {
	e.buf.WriteString(e.prefix)
	for i := 0; i < e.indent; i++ {
		e.buf.WriteString(e.unit)
	}
}

// Line writes a single line of code at the current indentation level.
func (e *Emitter) Line(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	if line == "" {
		e.buf.WriteByte('\n')
		return
	}
	e.writeIndent()
	e.buf.WriteString(line)
	e.buf.WriteByte('\n')
}

// Block opens a block (appends " {" to the line and increases indent).
func (e *Emitter) Block(format string, args ...any) {
	e.writeIndent()
	if line := fmt.Sprintf(format, args...); line != "" {
		e.buf.WriteString(line)
		e.buf.WriteByte(' ')
	}
	e.buf.WriteString("{\n")
	e.indent++
}

// EndBlock closes a block (decreases indent and writes "}").
func (e *Emitter) EndBlock() {
	if e.indent > 0 {
		e.indent--
	}
	e.writeIndent()
	e.buf.WriteString("}\n")
}

// Text writes a source fragment verbatim. Only its first line is indented;
// later lines keep the indentation they had in the source.
func (e *Emitter) Text(s string) {
	e.writeIndent()
	e.buf.WriteString(strings.TrimRight(s, " \t\n"))
	e.buf.WriteByte('\n')
}

// String returns the accumulated source code.
func (e *Emitter) String() string {
	return e.buf.String()
}
