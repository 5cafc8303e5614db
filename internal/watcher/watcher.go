// Package watcher reports batches of changed source files using fsnotify.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/coreoz/ctormeta/internal/logger"
)

// Event represents a file change event.
type Event struct {
	Path string
	Op   string // "create", "write", "remove"
}

// DefaultDebounce is the quiet period after the last change before a batch
// is delivered.
const DefaultDebounce = 200 * time.Millisecond

// skipDirs are never watched.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	".idea":        true,
	".vscode":      true,
	"coverage":     true,
}

// Watcher watches directory trees for changes to files with given extensions.
type Watcher struct {
	dirs       []string
	extensions []string // e.g., [".ts", ".tsx"]
	debounce   time.Duration
	onChange   func(events []Event)
	ignore     []string
	log        logger.Logger

	mu       sync.Mutex
	pending  []Event
	timer    *time.Timer
	stopCh   chan struct{}
	stopOnce sync.Once
}

// New creates a new file watcher. onChange receives each batch of changes
// after debounce has elapsed without new events.
func New(dirs []string, extensions []string, debounce time.Duration, onChange func(events []Event)) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		dirs:       dirs,
		extensions: extensions,
		debounce:   debounce,
		onChange:   onChange,
		log:        logger.Discard(),
		stopCh:     make(chan struct{}),
	}
}

// SetLogger sets the logger used for watch errors.
func (w *Watcher) SetLogger(l logger.Logger) {
	if l != nil {
		w.log = l
	}
}

// Ignore excludes the given directories, typically the output directory, so
// that writing results does not trigger another run.
func (w *Watcher) Ignore(dirs ...string) {
	for _, d := range dirs {
		if abs, err := filepath.Abs(d); err == nil {
			w.ignore = append(w.ignore, abs)
		}
	}
}

// Watch blocks until Stop is called or ctx is done.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Close()

	for _, dir := range w.dirs {
		if err := w.addTree(fw, dir); err != nil {
			return err
		}
	}
	defer w.stopTimer()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.stopCh:
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(fw, event)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}

// Stop stops the watcher. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

func (w *Watcher) addTree(fw *fsnotify.Watcher, root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && (skipDirs[d.Name()] || w.ignored(path)) {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}
	return nil
}

func (w *Watcher) handle(fw *fsnotify.Watcher, event fsnotify.Event) {
	if w.ignored(event.Name) {
		return
	}
	if event.Has(fsnotify.Create) {
		if ok, _ := isDir(event.Name); ok {
			if err := w.addTree(fw, event.Name); err != nil && !errors.Is(err, fsnotify.ErrClosed) {
				w.log.Warn("failed to watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}
	if !w.matches(event.Name) {
		return
	}
	op := opName(event.Op)
	if op == "" {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = append(w.pending, Event{Path: event.Name, Op: op})
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	pending := w.pending
	w.pending = nil
	w.mu.Unlock()
	if len(pending) > 0 && w.onChange != nil {
		w.onChange(coalesce(pending))
	}
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *Watcher) matches(path string) bool {
	if strings.HasSuffix(path, ".d.ts") {
		return false
	}
	return slices.Contains(w.extensions, filepath.Ext(path))
}

func (w *Watcher) ignored(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, dir := range w.ignore {
		if abs == dir || strings.HasPrefix(abs, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func opName(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return "remove"
	case op.Has(fsnotify.Create):
		return "create"
	case op.Has(fsnotify.Write):
		return "write"
	}
	return ""
}

// coalesce keeps one event per path, in order of first appearance. A file
// created within the batch stays a create unless it was removed again.
func coalesce(events []Event) []Event {
	index := make(map[string]int, len(events))
	var out []Event
	for _, e := range events {
		i, seen := index[e.Path]
		if !seen {
			index[e.Path] = len(out)
			out = append(out, e)
			continue
		}
		if e.Op == "write" && out[i].Op == "create" {
			continue
		}
		out[i].Op = e.Op
	}
	return out
}

func isDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}
