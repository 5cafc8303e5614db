// Package metadata defines the constructor metadata the pass discovers for
// each class, and the JSON report the CLI writes from it.
package metadata

import (
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Symbol keys under which the pass publishes metadata on each class.
const (
	CtorArgsKey = "___CTOR_ARGS___"
	CtorNameKey = "___CTOR_NAME___"
)

// Class is the metadata recorded for one named class.
type Class struct {
	// Name is the class identifier.
	Name string `json:"name"`

	// CtorArgs lists the type names of the constructor parameters that carry
	// a simple named type annotation, in declaration order.
	CtorArgs []string `json:"ctorArgs"`

	// HasConstructor is false when the class declares no constructor.
	// CtorArgs is empty in that case too.
	HasConstructor bool `json:"hasConstructor"`

	// File is the source file the class was read from, when known.
	File string `json:"file,omitempty"`
}

// ArgsString formats CtorArgs as `[A, B]`.
func (c Class) ArgsString() string {
	return "[" + strings.Join(c.CtorArgs, ", ") + "]"
}

// Report is the document written by `ctormeta inspect`.
type Report struct {
	Classes []Class `json:"classes"`
}

// Marshal encodes the report as indented JSON terminated by a newline.
func (r Report) Marshal() ([]byte, error) {
	if r.Classes == nil {
		r.Classes = []Class{}
	}
	b, err := json.Marshal(r, jsontext.WithIndent("  "))
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// ParseReport decodes a report produced by Marshal.
func ParseReport(data []byte) (Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return Report{}, err
	}
	return r, nil
}

// Names returns the class names in report order.
func (r Report) Names() []string {
	names := make([]string, len(r.Classes))
	for i, c := range r.Classes {
		names[i] = c.Name
	}
	return names
}
