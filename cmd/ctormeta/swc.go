package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/coreoz/ctormeta/internal/swcjson"
	"github.com/coreoz/ctormeta/internal/transform"
)

var errNoInput = errors.New("no input: pass a file or pipe SWC JSON on stdin")

func newSwcCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "swc [file|-]",
		Short: "Transform an SWC program tree in JSON form",
		Long: "Read a Module or Script produced by SWC's parser, add the metadata\n" +
			"getters and write the program back as JSON. Nodes the tool does not\n" +
			"model are passed through unchanged.",
		Example: "  swc-parse app.ts | ctormeta swc > app.json\n" +
			"  ctormeta swc program.json --output out.json",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.newSession(cmd, output == "")
			if err != nil {
				return err
			}
			data, name, err := a.readSwcInput(args)
			if err != nil {
				return err
			}

			prog, err := swcjson.Decode(data)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			classes := transform.Run(prog, s.cfg, transform.WithFile(name), transform.WithLogger(s.report))
			out, err := swcjson.Encode(prog)
			if err != nil {
				return fmt.Errorf("failed to encode %s: %w", name, err)
			}
			out = append(out, '\n')

			if output == "" {
				if _, err := cmd.OutOrStdout().Write(out); err != nil {
					return err
				}
				return s.finish(cmd)
			}
			if err := afero.WriteFile(s.fs, s.abs(output), out, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			s.log.Info("wrote program", "path", output, "classes", len(classes))
			return s.finish(cmd)
		},
	}
	cmd.Flags().StringVar(&output, "output", "", "Write the program to this file instead of stdout")
	return cmd
}

// readSwcInput reads the file argument, or stdin for "-" or no argument.
// Without an argument an interactive stdin is refused.
func (a *app) readSwcInput(args []string) ([]byte, string, error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := afero.ReadFile(a.fs, a.abs(args[0]))
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		return data, a.rel(a.abs(args[0])), nil
	}
	if len(args) == 0 && a.stdinIsTerminal != nil && a.stdinIsTerminal() {
		return nil, "", errNoInput
	}
	data, err := io.ReadAll(a.stdin)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return data, "<stdin>", nil
}
