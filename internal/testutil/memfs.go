// Package testutil provides test helpers shared by the ctormeta packages.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

// MemFS returns an in-memory filesystem holding files, keyed by path
// relative to root.
func MemFS(t testing.TB, root string, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("creating %s: %v", root, err)
	}
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := afero.WriteFile(fs, p, []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", p, err)
		}
	}
	return fs
}

// ReadFile returns the content of name in fs, failing the test when it
// cannot be read.
func ReadFile(t testing.TB, fs afero.Fs, name string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, name)
	if err != nil {
		t.Fatalf("reading %s: %v", name, err)
	}
	return string(data)
}

// Exists reports whether name exists in fs.
func Exists(t testing.TB, fs afero.Fs, name string) bool {
	t.Helper()
	ok, err := afero.Exists(fs, name)
	if err != nil {
		t.Fatalf("stat %s: %v", name, err)
	}
	return ok
}
