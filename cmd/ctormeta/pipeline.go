package main

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/coreoz/ctormeta/internal/config"
	"github.com/coreoz/ctormeta/internal/diagnostic"
	"github.com/coreoz/ctormeta/internal/logger"
	"github.com/coreoz/ctormeta/internal/metadata"
	"github.com/coreoz/ctormeta/internal/rewrite"
	"github.com/coreoz/ctormeta/internal/transform"
	"github.com/coreoz/ctormeta/internal/tsparse"
)

// sourcePattern is appended to directory arguments.
const sourcePattern = "**/*.{ts,tsx,mts,cts}"

// skippedDirs are never searched for sources.
var skippedDirs = []string{"node_modules", ".git"}

// ConfigResult holds the result of loading a ctormeta config file.
type ConfigResult struct {
	Config config.Config
	Path   string // resolved path to the config file (empty if none found)
}

// loadOrDiscoverConfig loads the config named by --config, or auto-discovers
// one in the working directory. --log overrides the level it sets.
func (a *app) loadOrDiscoverConfig() (*ConfigResult, error) {
	result := &ConfigResult{Config: config.DefaultConfig()}

	p := a.opts.configPath
	if p != "" && !filepath.IsAbs(p) {
		p = filepath.Join(a.cwd, p)
	}
	if p == "" {
		p = config.Discover(a.fs, a.cwd)
	}
	if p != "" {
		cfg, err := config.LoadFS(a.fs, p)
		if err != nil {
			return nil, err
		}
		result.Config = *cfg
		result.Path = p
	}

	if a.opts.logLevel != "" {
		level, err := config.ParseLogLevel(a.opts.logLevel)
		if err != nil {
			return nil, fmt.Errorf("--log: %w", err)
		}
		result.Config.Log = level
	}
	return result, nil
}

// session is the state of one command run.
type session struct {
	*app
	cfg config.Config

	// log carries CLI progress and always goes to stderr.
	log logger.Logger
	// report receives the per-class lines of the transform.
	report logger.Logger
	diags  *diagnostic.Collector
}

// newSession loads the configuration and sets up logging. Class reports go
// to stdout unless stdoutBusy says stdout carries the command's output.
func (a *app) newSession(cmd *cobra.Command, stdoutBusy bool) (*session, error) {
	res, err := a.loadOrDiscoverConfig()
	if err != nil {
		return nil, err
	}
	var jsonLogs bool
	switch a.opts.logFormat {
	case "", "text":
	case "json":
		jsonLogs = true
	default:
		return nil, fmt.Errorf("--log-format: invalid value %q, must be text or json", a.opts.logFormat)
	}

	level := logger.InfoLevel
	switch {
	case a.opts.quiet:
		level = logger.WarnLevel
	case res.Config.Log == config.LogDebug:
		level = logger.DebugLevel
	}
	var reportOut io.Writer = cmd.OutOrStdout()
	if stdoutBusy {
		reportOut = cmd.ErrOrStderr()
	}

	s := &session{
		app: a,
		cfg: res.Config,
		log: logger.NewLogger(&logger.Config{Level: level, Output: cmd.ErrOrStderr(), JSON: jsonLogs}),
		report: logger.NewLogger(&logger.Config{
			Level:  transform.LoggerLevel(res.Config.Log),
			Output: reportOut,
			JSON:   jsonLogs,
		}),
		diags: diagnostic.NewCollector(a.opts.strict, a.opts.quiet),
	}
	cmd.SetContext(logger.ContextWithLogger(cmd.Context(), s.log))
	if res.Path != "" {
		s.log.Debug("loaded config", "path", res.Path, "log", res.Config.Log)
		for _, w := range res.Config.ValidateDetailed().Warnings {
			s.diags.Warn(diagnostic.CategoryConfigInvalid, s.rel(res.Path), 0, w)
		}
	}
	return s, nil
}

// rel returns p relative to the working directory, with forward slashes.
func (a *app) rel(p string) string {
	r, err := filepath.Rel(a.cwd, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(r)
}

func (a *app) abs(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(a.cwd, p)
}

// expandPatterns resolves file, directory and doublestar glob arguments,
// relative to the working directory, into a sorted list of TypeScript files.
// No argument means the working directory.
func (s *session) expandPatterns(patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = []string{"."}
	}
	fsys := afero.NewIOFS(afero.NewBasePathFs(s.fs, s.cwd))

	seen := make(map[string]bool)
	var files []string
	add := func(rel string) {
		p := s.abs(filepath.FromSlash(rel))
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, pattern := range patterns {
		rel, err := s.relPattern(pattern)
		if err != nil {
			return nil, err
		}
		if info, err := s.fs.Stat(s.abs(filepath.FromSlash(rel))); err == nil {
			if !info.IsDir() {
				if !tsparse.Supported(rel) {
					s.diags.Warn(diagnostic.CategoryUnsupportedFile, rel, 0, "not a TypeScript source file, skipped")
					continue
				}
				add(rel)
				continue
			}
			rel = path.Join(rel, sourcePattern)
		}
		if !doublestar.ValidatePattern(rel) {
			return nil, fmt.Errorf("invalid glob pattern %q", pattern)
		}
		matches, err := doublestar.Glob(fsys, rel, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if skipped(m) || !tsparse.Supported(m) {
				continue
			}
			add(m)
		}
	}
	slices.Sort(files)
	return files, nil
}

// relPattern turns a pattern into the unrooted slash form io/fs expects.
func (a *app) relPattern(pattern string) (string, error) {
	p := filepath.ToSlash(pattern)
	if filepath.IsAbs(pattern) {
		base, meta := doublestar.SplitPattern(p)
		r, err := filepath.Rel(a.cwd, filepath.FromSlash(base))
		if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
			return "", fmt.Errorf("%w: %s not in %s", rewrite.ErrOutsideBase, pattern, a.cwd)
		}
		p = path.Join(filepath.ToSlash(r), meta)
	}
	p = path.Clean(p)
	if p == ".." || strings.HasPrefix(p, "../") {
		return "", fmt.Errorf("%w: %s not in %s", rewrite.ErrOutsideBase, pattern, a.cwd)
	}
	return p, nil
}

func skipped(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		if slices.Contains(skippedDirs, part) {
			return true
		}
	}
	return false
}

// fileResult is one transformed source file.
type fileResult struct {
	Path    string // absolute
	Rel     string
	Output  string
	BOM     bool
	Changed int
	Classes []metadata.Class
}

// processFile parses, transforms and rewrites one file. Syntax errors are
// recorded as warnings; tree-sitter recovers from them.
func (s *session) processFile(ctx context.Context, p string) (*fileResult, error) {
	data, err := afero.ReadFile(s.fs, p)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}
	rel := s.rel(p)
	log := logger.FromContext(ctx).With("file", rel)
	src, bom := rewrite.StripBOM(string(data))
	if rewrite.HasMetadata(src) {
		s.diags.WarnWithHint(diagnostic.CategoryAlreadyProcessed, rel, 0,
			"file already declares constructor metadata getters, a second pair will be added",
			"run ctormeta on the original sources")
	}

	parsed, err := tsparse.Parse(ctx, []byte(src), p)
	if err != nil {
		return nil, err
	}
	log.Debug("parsed file", "bytes", len(src), "syntaxErrors", len(parsed.Errors))
	for _, e := range parsed.Errors {
		s.diags.Add(diagnostic.Diagnostic{
			Severity: diagnostic.SeverityWarning,
			Category: diagnostic.CategorySyntax,
			File:     rel,
			Line:     e.Line,
			Column:   e.Column,
			Message:  e.Message,
		})
	}

	classes := transform.Run(parsed.Program, s.cfg, transform.WithFile(rel), transform.WithLogger(s.report.With("file", rel)))
	out, changed := rewrite.Apply(src, parsed.Program)
	log.Debug("transformed file", "classes", len(classes), "changed", changed)
	return &fileResult{
		Path:    p,
		Rel:     rel,
		Output:  out,
		BOM:     bom,
		Changed: changed,
		Classes: classes,
	}, nil
}

// processAll runs processFile over files with at most --jobs in flight.
// Results keep the order of files.
func (s *session) processAll(ctx context.Context, files []string) ([]*fileResult, error) {
	results := make([]*fileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.opts.jobs, 1))
	for i, f := range files {
		g.Go(func() error {
			r, err := s.processFile(gctx, f)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// writeResults writes every result under outDir, or over its source when
// outDir is empty. Unchanged files are not rewritten in place. It returns
// the number of files written.
func (s *session) writeResults(results []*fileResult, outDir string) (int, error) {
	written := 0
	for _, r := range results {
		dest, err := rewrite.OutputPath(s.cwd, r.Path, outDir)
		if err != nil {
			return written, err
		}
		if outDir == "" && r.Changed == 0 {
			continue
		}
		if err := rewrite.WriteFile(s.fs, dest, r.Output, r.BOM); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", dest, err)
		}
		s.log.Debug("wrote file", "path", s.rel(dest), "classes", r.Changed)
		written++
	}
	return written, nil
}

// finish prints the collected diagnostics and fails when any is an error.
func (s *session) finish(cmd *cobra.Command) error {
	diags := s.diags
	s.diags = diagnostic.NewCollector(s.opts.strict, s.opts.quiet)
	if out := diags.FormatAll(); out != "" {
		fmt.Fprint(cmd.ErrOrStderr(), out)
		fmt.Fprintln(cmd.ErrOrStderr(), diags.Summary())
	}
	if diags.HasErrors() {
		return fmt.Errorf("%d error(s)", diags.ErrorCount())
	}
	return nil
}

func countClasses(results []*fileResult) int {
	n := 0
	for _, r := range results {
		n += len(r.Classes)
	}
	return n
}
