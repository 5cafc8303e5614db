// Package rewrite splices the members added by the transform into the
// original source text and writes the result.
package rewrite

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/coreoz/ctormeta/internal/ast"
	"github.com/coreoz/ctormeta/internal/metadata"
	"github.com/coreoz/ctormeta/internal/printer"
	"github.com/coreoz/ctormeta/internal/transform"
)

const bom = "\xEF\xBB\xBF"

// ErrOutsideBase is returned by OutputPath for files outside the base directory.
var ErrOutsideBase = errors.New("file is outside the base directory")

// insertion is text to add at a byte offset of the source.
type insertion struct {
	at   int
	text string
}

// Apply inserts every metadata getter added to prog before the closing brace
// of its class body. Members are indented one level deeper than the class,
// following the indentation of the existing members when there are any.
// Inserted lines end with "\r\n" when src does. It returns the new text and
// the number of classes changed.
func Apply(src string, prog *ast.Program) (string, int) {
	var inserts []insertion
	ast.Inspect(prog, func(n ast.Node) bool {
		_, class, ok := ast.ClassOf(n)
		if !ok || class == nil {
			return true
		}
		if ins, ok := classInsertion(src, n.Range().Lo, class); ok {
			inserts = append(inserts, ins)
		}
		return true
	})
	if len(inserts) == 0 {
		return src, 0
	}

	// Apply back to front so earlier offsets stay valid.
	sort.SliceStable(inserts, func(i, j int) bool { return inserts[i].at > inserts[j].at })
	out := src
	for _, ins := range inserts {
		out = out[:ins.at] + ins.text + out[ins.at:]
	}
	return out, len(inserts)
}

func classInsertion(src string, classStart int, class *ast.Class) (insertion, bool) {
	var (
		added    []ast.ClassMember
		firstOld ast.ClassMember
	)
	for _, m := range class.Body {
		if transform.IsSynthesized(m) {
			added = append(added, m)
		} else if firstOld == nil && !m.Range().IsZero() {
			firstOld = m
		}
	}
	closing := class.BodySpan.Hi - 1
	if len(added) == 0 || class.BodySpan.IsZero() || closing < 0 || closing >= len(src) || src[closing] != '}' {
		return insertion{}, false
	}

	classIndent := lineIndent(src, classStart)
	memberIndent := classIndent + "  "
	if firstOld != nil {
		if indent := lineIndent(src, firstOld.Range().Lo); len(indent) > len(classIndent) && strings.HasPrefix(indent, classIndent) {
			memberIndent = indent
		}
	}
	unit := strings.TrimPrefix(memberIndent, classIndent)

	var b strings.Builder
	for _, m := range added {
		b.WriteString(printer.Member(m, memberIndent, unit))
	}
	text, newline := b.String(), "\n"
	if strings.Contains(src, "\r\n") {
		text, newline = strings.ReplaceAll(text, "\n", "\r\n"), "\r\n"
	}

	lineStart := strings.LastIndexByte(src[:closing], '\n') + 1
	if strings.TrimSpace(src[lineStart:closing]) == "" {
		// `}` opens its own line: add whole lines above it.
		return insertion{at: lineStart, text: text}, true
	}
	return insertion{at: closing, text: newline + text + classIndent}, true
}

// lineIndent returns the leading blanks of the line containing pos.
func lineIndent(src string, pos int) string {
	if pos > len(src) {
		pos = len(src)
	}
	start := strings.LastIndexByte(src[:pos], '\n') + 1
	end := start
	for end < len(src) && (src[end] == ' ' || src[end] == '\t') {
		end++
	}
	return src[start:end]
}

// StripBOM removes a leading UTF-8 byte order mark.
func StripBOM(src string) (string, bool) {
	if strings.HasPrefix(src, bom) {
		return src[len(bom):], true
	}
	return src, false
}

// HasMetadata reports whether src already declares the metadata getters,
// which happens when a file is transformed twice.
func HasMetadata(src string) bool {
	return strings.Contains(src, printer.Quote(metadata.CtorArgsKey)) &&
		strings.Contains(src, "Symbol.for(")
}

// WriteFile writes text to fs, creating parent directories as needed.
func WriteFile(fs afero.Fs, fileName, text string, writeByteOrderMark bool) error {
	if err := fs.MkdirAll(filepath.Dir(fileName), 0o755); err != nil {
		return err
	}
	if writeByteOrderMark {
		text = bom + text
	}
	return afero.WriteFile(fs, fileName, []byte(text), 0o644)
}

// OutputPath maps file, found under base, to the same relative path under
// outDir. An empty outDir maps a file onto itself.
func OutputPath(base, file, outDir string) (string, error) {
	if outDir == "" {
		return file, nil
	}
	rel, err := filepath.Rel(base, file)
	if err != nil {
		return "", fmt.Errorf("output path for %s: %w", file, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s not in %s", ErrOutsideBase, file, base)
	}
	return filepath.Join(outDir, rel), nil
}
