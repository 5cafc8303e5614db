package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestWatcher_Matches(t *testing.T) {
	w := New(nil, []string{".ts", ".tsx"}, 0, nil)
	cases := map[string]bool{
		"a.ts":        true,
		"b.tsx":       true,
		"c.js":        false,
		"types.d.ts":  false,
		"dir/x.ts":    true,
		"noextension": false,
	}
	for path, want := range cases {
		if got := w.matches(path); got != want {
			t.Errorf("matches(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestWatcher_DefaultDebounce(t *testing.T) {
	w := New(nil, nil, 0, nil)
	if w.debounce != DefaultDebounce {
		t.Errorf("expected default debounce, got %v", w.debounce)
	}
}

func TestWatcher_Ignore(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "dist")
	w := New([]string{dir}, []string{".ts"}, 0, nil)
	w.Ignore(out)

	if !w.ignored(filepath.Join(out, "a.ts")) {
		t.Error("expected files under the ignored directory to be ignored")
	}
	if !w.ignored(out) {
		t.Error("expected the ignored directory itself to be ignored")
	}
	if w.ignored(filepath.Join(dir, "dist2", "a.ts")) {
		t.Error("a sibling with the same prefix must not be ignored")
	}
}

func TestOpName(t *testing.T) {
	cases := []struct {
		op   fsnotify.Op
		want string
	}{
		{fsnotify.Create, "create"},
		{fsnotify.Write, "write"},
		{fsnotify.Remove, "remove"},
		{fsnotify.Rename, "remove"},
		{fsnotify.Chmod, ""},
		{fsnotify.Create | fsnotify.Write, "create"},
	}
	for _, c := range cases {
		if got := opName(c.op); got != c.want {
			t.Errorf("opName(%v) = %q, want %q", c.op, got, c.want)
		}
	}
}

func TestCoalesce(t *testing.T) {
	events := coalesce([]Event{
		{Path: "/a.ts", Op: "create"},
		{Path: "/b.ts", Op: "write"},
		{Path: "/a.ts", Op: "write"},
		{Path: "/b.ts", Op: "write"},
		{Path: "/c.ts", Op: "write"},
		{Path: "/c.ts", Op: "remove"},
	})
	want := []Event{
		{Path: "/a.ts", Op: "create"},
		{Path: "/b.ts", Op: "write"},
		{Path: "/c.ts", Op: "remove"},
	}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %v", len(want), events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d: expected %v, got %v", i, want[i], events[i])
		}
	}
}

func TestWatcher_Watch(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	batches := make(chan []Event, 4)
	w := New([]string{dir}, []string{".ts"}, 50*time.Millisecond, func(events []Event) {
		batches <- events
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()

	// Give fsnotify time to register the directories.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(sub, "a.ts"), []byte("class A {}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "notes.txt"), []byte("skip"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case events := <-batches:
		if len(events) != 1 || filepath.Base(events[0].Path) != "a.ts" {
			t.Errorf("expected one event for a.ts, got %v", events)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change batch")
	}

	w.Stop()
	w.Stop()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after Stop")
	}
}

func TestWatcher_WatchMissingDir(t *testing.T) {
	w := New([]string{filepath.Join(t.TempDir(), "missing")}, []string{".ts"}, 0, nil)
	if err := w.Watch(context.Background()); err == nil {
		t.Error("expected an error for a missing directory")
	}
}
