package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/coreoz/ctormeta/internal/logger"
	"github.com/coreoz/ctormeta/internal/rewrite"
	"github.com/coreoz/ctormeta/internal/tsparse"
	"github.com/coreoz/ctormeta/internal/watcher"
)

// watchExtensions are the source extensions the watcher reacts to.
var watchExtensions = []string{".ts", ".tsx", ".mts", ".cts"}

func newWatchCmd(a *app) *cobra.Command {
	var (
		outDir   string
		debounce time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch [dirs...]",
		Short: "Transform sources into an output directory and keep it up to date",
		Long: "Run transform over the given directories, then re-run it on every\n" +
			"changed file. Output always goes to --out-dir, which is never watched.",
		Example: "  ctormeta watch src --out-dir build",
		RunE: func(cmd *cobra.Command, args []string) error {
			if outDir == "" {
				return errors.New("watch needs --out-dir: rewriting sources in place would trigger itself")
			}
			s, err := a.newSession(cmd, false)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				args = []string{"."}
			}
			dirs := make([]string, len(args))
			for i, d := range args {
				dirs[i] = s.abs(d)
			}
			ws := &watchSession{session: s, cmd: cmd, outDir: s.abs(outDir)}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s.log.Info("performing initial transform...")
			if err := ws.initial(ctx, dirs); err != nil {
				s.log.Error("initial transform failed, watching for changes...", "error", err)
			}

			w := watcher.New(dirs, watchExtensions, debounce, func(events []watcher.Event) {
				ws.apply(ctx, events)
			})
			w.SetLogger(logger.FromContext(ctx))
			w.Ignore(ws.outDir)
			s.log.Info("watching for changes...", "dirs", args, "outDir", outDir)
			if err := w.Watch(ctx); err != nil {
				return err
			}
			s.log.Info("shutting down...")
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "Directory the transformed files are written to")
	cmd.Flags().DurationVar(&debounce, "debounce", watcher.DefaultDebounce, "Quiet period before a batch of changes is processed")
	return cmd
}

// watchSession applies change batches one at a time.
type watchSession struct {
	*session
	cmd    *cobra.Command
	outDir string
	mu     sync.Mutex
}

func (ws *watchSession) initial(ctx context.Context, dirs []string) error {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	files, err := ws.expandPatterns(dirs)
	if err != nil {
		return err
	}
	results, err := ws.processAll(ctx, files)
	if err != nil {
		return err
	}
	written, err := ws.writeResults(results, ws.outDir)
	if err != nil {
		return err
	}
	ws.log.Info("initial transform complete", "files", written, "classes", countClasses(results))
	return ws.finish(ws.cmd)
}

// apply transforms created and modified files and deletes the output of
// removed ones. Failures are logged; watching goes on.
func (ws *watchSession) apply(ctx context.Context, events []watcher.Event) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.log.Info(fmt.Sprintf("detected %d change(s), transforming...", len(events)))

	var changed []string
	for _, e := range events {
		if !tsparse.Supported(e.Path) {
			continue
		}
		if e.Op != "remove" {
			if ok, _ := afero.Exists(ws.fs, e.Path); ok {
				changed = append(changed, e.Path)
			}
			continue
		}
		dest, err := rewrite.OutputPath(ws.cwd, e.Path, ws.outDir)
		if err != nil {
			ws.log.Warn("skipping removed file", "path", e.Path, "error", err)
			continue
		}
		if err := ws.fs.Remove(dest); err != nil && !errors.Is(err, fs.ErrNotExist) {
			ws.log.Warn("failed to remove output", "path", ws.rel(dest), "error", err)
		}
	}

	results, err := ws.processAll(ctx, changed)
	if err == nil {
		_, err = ws.writeResults(results, ws.outDir)
	}
	if err != nil {
		ws.log.Error("transform failed, waiting for changes...", "error", err)
	}
	if err := ws.finish(ws.cmd); err != nil {
		ws.log.Error("transform reported errors, waiting for changes...", "error", err)
	}
}
