// Package tsparse parses TypeScript source with tree-sitter and lowers the
// concrete syntax tree into the program tree.
package tsparse

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/coreoz/ctormeta/internal/ast"
)

// ErrUnsupportedFile is returned for file names without a TypeScript extension.
var ErrUnsupportedFile = errors.New("unsupported file type")

// SyntaxError locates a region tree-sitter could not parse.
type SyntaxError struct {
	Span    ast.Span
	Line    int // 1-based
	Column  int // 1-based, in bytes
	Message string
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// Result is a parsed source file.
type Result struct {
	Program *ast.Program
	Source  []byte
	// Errors lists syntax errors. Parsing recovers from them, so Program is
	// always set.
	Errors []SyntaxError
}

// Supported reports whether Parse accepts fileName.
func Supported(fileName string) bool {
	return language(fileName) != nil
}

func language(fileName string) *sitter.Language {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".ts", ".mts", ".cts":
		if strings.HasSuffix(strings.ToLower(fileName), ".d.ts") {
			return nil
		}
		return typescript.GetLanguage()
	case ".tsx":
		return tsx.GetLanguage()
	}
	return nil
}

// Parse parses src, naming it fileName. The extension selects the grammar.
func Parse(ctx context.Context, src []byte, fileName string) (*Result, error) {
	lang := language(fileName)
	if lang == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, fileName)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", fileName, err)
	}
	defer tree.Close()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root := tree.RootNode()
	l := &lowerer{src: src}
	res := &Result{Program: l.program(root), Source: src}
	if root.HasError() {
		res.Errors = collectErrors(root)
	}
	return res, nil
}

// collectErrors returns the ERROR and missing nodes under n in source order.
func collectErrors(n *sitter.Node) []SyntaxError {
	var errs []SyntaxError
	var visit func(*sitter.Node)
	visit = func(n *sitter.Node) {
		switch {
		case n.IsMissing():
			errs = append(errs, syntaxError(n, "missing "+n.Type()))
			return
		case n.Type() == "ERROR":
			errs = append(errs, syntaxError(n, "unexpected syntax"))
			return
		case !n.HasError():
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			visit(n.Child(i))
		}
	}
	visit(n)
	return errs
}

func syntaxError(n *sitter.Node, msg string) SyntaxError {
	p := n.StartPoint()
	return SyntaxError{
		Span:    spanOf(n),
		Line:    int(p.Row) + 1,
		Column:  int(p.Column) + 1,
		Message: msg,
	}
}
