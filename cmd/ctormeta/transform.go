package main

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/coreoz/ctormeta/internal/metadata"
)

func newTransformCmd(a *app) *cobra.Command {
	var (
		outDir  string
		inPlace bool
	)
	cmd := &cobra.Command{
		Use:   "transform [patterns...]",
		Short: "Add metadata getters to TypeScript files",
		Long: "Transform the files matched by the given paths or doublestar patterns.\n" +
			"A single file is written to stdout unless --out-dir or --in-place is set.",
		Example: "  ctormeta transform src/app.service.ts\n" +
			"  ctormeta transform 'src/**/*.ts' --out-dir build\n" +
			"  ctormeta transform src --in-place --log info",
		RunE: func(cmd *cobra.Command, args []string) error {
			if outDir != "" && inPlace {
				return fmt.Errorf("--out-dir and --in-place are mutually exclusive")
			}
			toStdout := outDir == "" && !inPlace
			s, err := a.newSession(cmd, toStdout)
			if err != nil {
				return err
			}

			files, err := s.expandPatterns(args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				s.log.Warn("no TypeScript files matched", "patterns", args)
				return s.finish(cmd)
			}
			if toStdout && len(files) > 1 {
				return fmt.Errorf("%d files matched: use --out-dir or --in-place to write more than one file", len(files))
			}

			start := time.Now()
			results, err := s.processAll(cmd.Context(), files)
			if err != nil {
				return err
			}
			if toStdout {
				fmt.Fprint(cmd.OutOrStdout(), results[0].Output)
				return s.finish(cmd)
			}

			dest := ""
			if outDir != "" {
				dest = s.abs(outDir)
			}
			written, err := s.writeResults(results, dest)
			if err != nil {
				return err
			}
			s.log.Info("transform complete",
				"files", len(results),
				"written", written,
				"classes", countClasses(results),
				"duration", time.Since(start).Round(time.Millisecond))
			return s.finish(cmd)
		},
	}
	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "Write results under this directory, mirroring paths relative to the working directory")
	cmd.Flags().BoolVar(&inPlace, "in-place", false, "Overwrite the source files")
	return cmd
}

var errStaleReport = errors.New("metadata report is out of date")

// compareReports describes how the classes of next differ from prev.
func compareReports(prev, next metadata.Report) (added, removed []string) {
	prevNames, nextNames := prev.Names(), next.Names()
	for _, n := range nextNames {
		if !slices.Contains(prevNames, n) {
			added = append(added, n)
		}
	}
	for _, n := range prevNames {
		if !slices.Contains(nextNames, n) {
			removed = append(removed, n)
		}
	}
	return added, removed
}

func newInspectCmd(a *app) *cobra.Command {
	var (
		output string
		check  bool
	)
	cmd := &cobra.Command{
		Use:   "inspect [patterns...]",
		Short: "Print the constructor metadata of every class as JSON",
		Example: "  ctormeta inspect src\n" +
			"  ctormeta inspect 'src/**/*.service.ts' --output metadata.json\n" +
			"  ctormeta inspect src --output metadata.json --check",
		RunE: func(cmd *cobra.Command, args []string) error {
			if check && output == "" {
				return errors.New("--check needs --output")
			}
			s, err := a.newSession(cmd, output == "")
			if err != nil {
				return err
			}
			files, err := s.expandPatterns(args)
			if err != nil {
				return err
			}
			results, err := s.processAll(cmd.Context(), files)
			if err != nil {
				return err
			}

			var report metadata.Report
			for _, r := range results {
				report.Classes = append(report.Classes, r.Classes...)
			}
			data, err := report.Marshal()
			if err != nil {
				return fmt.Errorf("failed to encode report: %w", err)
			}
			if output == "" {
				if _, err := cmd.OutOrStdout().Write(data); err != nil {
					return err
				}
				return s.finish(cmd)
			}
			if check {
				return s.checkReport(cmd, output, report, data)
			}
			if err := afero.WriteFile(s.fs, s.abs(output), data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			s.log.Info("wrote metadata", "path", output, "classes", len(report.Classes))
			s.log.Debug("reported classes", "names", report.Names())
			return s.finish(cmd)
		},
	}
	cmd.Flags().StringVar(&output, "output", "", "Write the report to this file instead of stdout")
	cmd.Flags().BoolVar(&check, "check", false, "Fail when the --output file differs from the current metadata instead of writing it")
	return cmd
}

// checkReport compares the report stored at path with the current one.
func (s *session) checkReport(cmd *cobra.Command, path string, report metadata.Report, data []byte) error {
	stored, err := afero.ReadFile(s.fs, s.abs(path))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	prev, err := metadata.ParseReport(stored)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	// Re-encode so formatting differences do not count.
	normalized, err := prev.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if !bytes.Equal(normalized, data) {
		added, removed := compareReports(prev, report)
		s.log.Error("metadata differs", "path", path, "added", added, "removed", removed)
		return fmt.Errorf("%w: %s", errStaleReport, path)
	}
	s.log.Info("metadata is up to date", "path", path, "classes", len(report.Classes))
	return s.finish(cmd)
}
