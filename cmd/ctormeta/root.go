package main

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// app holds what the commands need from the process, so tests can swap the
// filesystem and standard input.
type app struct {
	fs              afero.Fs
	cwd             string
	stdin           io.Reader
	stdinIsTerminal func() bool
	opts            options
}

// options are the flags shared by every command.
type options struct {
	configPath string
	logLevel   string
	jobs       int
	strict     bool
	quiet      bool
	logFormat  string
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "ctormeta",
		Short:         "Add constructor metadata getters to TypeScript classes",
		Long:          "ctormeta appends two static getters to every named class: the simple\nnamed types of its constructor parameters and the class name, both keyed\nby Symbol.for(...) so they can be read at runtime.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.opts.configPath, "config", "", "Path to ctormeta.config.json or .yaml (default: discovered in the working directory)")
	flags.StringVar(&a.opts.logLevel, "log", "", "Report level: none, info or debug (overrides the config file)")
	flags.IntVarP(&a.opts.jobs, "jobs", "j", runtime.GOMAXPROCS(0), "Number of files processed concurrently")
	flags.BoolVar(&a.opts.strict, "strict", false, "Treat warnings as errors")
	flags.BoolVar(&a.opts.quiet, "quiet", false, "Suppress warnings")
	flags.StringVar(&a.opts.logFormat, "log-format", "text", "Log line format: text or json")

	root.AddCommand(
		newTransformCmd(a),
		newInspectCmd(a),
		newSwcCmd(a),
		newWatchCmd(a),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "ctormeta", version)
		},
	}
}
