// Package swcjson converts between the SWC JSON AST and the program tree.
//
// SWC hands plugins a JSON rendering of its AST. Decode reads it into an
// *ast.Program: the shapes the transform reads become typed nodes, every other
// object becomes an *ast.Generic. Typed nodes keep the fields they do not
// model in Extra, so Encode reproduces the input for untouched nodes.
package swcjson

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/coreoz/ctormeta/internal/ast"
)

// ErrNotProgram is returned when the JSON root is not a Module or Script.
var ErrNotProgram = errors.New("not an SWC program")

// member is one name/value pair of a decoded object, in document order.
type member struct {
	name  string
	value any
}

// object is a decoded JSON object before it is turned into a node.
type object struct {
	typ     string
	members []member
}

func (o *object) get(name string) (any, bool) {
	for _, m := range o.members {
		if m.name == name {
			return m.value, true
		}
	}
	return nil, false
}

// extra returns every member except type and the names in taken.
func (o *object) extra(taken ...string) ast.Extra {
	e := make(ast.Extra, len(o.members))
outer:
	for _, m := range o.members {
		for _, t := range taken {
			if m.name == t {
				continue outer
			}
		}
		e[m.name] = m.value
	}
	return e
}

func (o *object) span() ast.Span {
	v, ok := o.get("span")
	if !ok {
		return ast.Span{}
	}
	raw, ok := v.(jsontext.Value)
	if !ok {
		return ast.Span{}
	}
	var s struct {
		Start int `json:"start"`
		End   int `json:"end"`
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return ast.Span{}
	}
	return ast.Span{Lo: s.Start, Hi: s.End}
}

// Decode parses an SWC Module or Script.
func Decode(data []byte) (*ast.Program, error) {
	dec := jsontext.NewDecoder(bytes.NewReader(data))
	if dec.PeekKind() != '{' {
		if _, err := dec.ReadValue(); err != nil {
			return nil, fmt.Errorf("decode program: %w", err)
		}
		return nil, ErrNotProgram
	}
	root, err := readValue(dec)
	if err != nil {
		return nil, fmt.Errorf("decode program: %w", err)
	}
	if _, err := dec.ReadToken(); err != io.EOF {
		if err == nil {
			err = errors.New("unexpected data after the program")
		}
		return nil, fmt.Errorf("decode program: %w", err)
	}
	prog, ok := root.(*ast.Program)
	if !ok {
		return nil, ErrNotProgram
	}
	return prog, nil
}

// readValue reads one JSON value. Objects become nodes, arrays []any and
// scalars stay raw.
func readValue(dec *jsontext.Decoder) (any, error) {
	switch dec.PeekKind() {
	case '{':
		obj, err := readObject(dec)
		if err != nil {
			return nil, err
		}
		return toNode(obj), nil
	case '[':
		if _, err := dec.ReadToken(); err != nil {
			return nil, err
		}
		elems := []any{}
		for dec.PeekKind() != ']' {
			v, err := readValue(dec)
			if err != nil {
				return nil, err
			}
			elems = append(elems, v)
		}
		if _, err := dec.ReadToken(); err != nil {
			return nil, err
		}
		return elems, nil
	default:
		v, err := dec.ReadValue()
		if err != nil {
			return nil, err
		}
		return v.Clone(), nil
	}
}

func readObject(dec *jsontext.Decoder) (*object, error) {
	if _, err := dec.ReadToken(); err != nil {
		return nil, err
	}
	obj := &object{}
	for dec.PeekKind() != '}' {
		tok, err := dec.ReadToken()
		if err != nil {
			return nil, err
		}
		name := tok.String()

		var value any
		if name == "span" {
			// Spans are kept verbatim.
			raw, err := dec.ReadValue()
			if err != nil {
				return nil, err
			}
			value = raw.Clone()
		} else if value, err = readValue(dec); err != nil {
			return nil, err
		}

		if name == "type" {
			if raw, ok := value.(jsontext.Value); ok && raw.Kind() == '"' {
				var typ string
				if err := json.Unmarshal(raw, &typ); err == nil {
					obj.typ = typ
					continue
				}
			}
		}
		obj.members = append(obj.members, member{name: name, value: value})
	}
	if _, err := dec.ReadToken(); err != nil {
		return nil, err
	}
	return obj, nil
}
