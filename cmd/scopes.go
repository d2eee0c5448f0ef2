// Copyright © 2024 The ELPS authors

package cmd

import (
	"context"
	"fmt"

	"github.com/luthersystems/splcheck/check"
	"github.com/luthersystems/splcheck/formatter"
	"github.com/luthersystems/splcheck/parser"
	"github.com/spf13/cobra"
)

// ScopesCommand returns the scopes subcommand.
func ScopesCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts)
	return &cobra.Command{
		Use:   "scopes [files...]",
		Short: "Print the scope tree and symbol tables of SPL syntax trees",
		Long: `Build the scope tree of each SPL syntax tree and print it together with the
Symbol and Function tables.

With no files, reads one tree from stdin. A tree whose scope tree cannot be
built has its diagnostics written to stderr instead, and the exit code is 1.

Example output:
  scopes:
    main (scope 0, node 0)
      F_a (scope 1, node 14)
  symbols:
    SCOPE     NAME  KIND       TYPE  NODE
    main      V_x   global     num   4
    main/F_a  V_a   parameter  num   19
  functions:
    NAME  RETURNS  PARAMS       SCOPE
    main  void     -            main
    F_a   num      V_a,V_b,V_c  main/F_a`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
			format, err := inputFormat()
			if err != nil {
				fmt.Fprintln(stderr, err) //nolint:errcheck // best-effort CLI output
				return exitWith(exitUsage)
			}
			files, err := expandArgs(args, nil)
			if err != nil {
				fmt.Fprintln(stderr, err) //nolint:errcheck // best-effort CLI output
				return exitWith(exitUsage)
			}
			sources, err := readSources(files, cfg.stdin)
			if err != nil {
				fmt.Fprintln(stderr, err) //nolint:errcheck // best-effort CLI output
				return exitWith(exitUsage)
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			checker := cfg.checker([]*check.Phase{check.ScopePhase})
			code := exitOK
			for _, src := range sources {
				tree, err := parser.Parse(src.data, src.name, format)
				if err != nil {
					fmt.Fprintln(stderr, err) //nolint:errcheck // best-effort CLI output
					code = exitUsage
					continue
				}
				report, err := checker.Check(ctx, tree)
				if err != nil {
					fmt.Fprintf(stderr, "%s: %v\n", src.name, err) //nolint:errcheck // best-effort CLI output
					code = exitUsage
					continue
				}
				if !report.OK {
					renderDiagnostics(stderr, report.Diagnostics, src.stdin())
					if code == exitOK {
						code = exitRejected
					}
					continue
				}
				if len(sources) > 1 {
					fmt.Fprintf(stdout, "%s:\n", src.name) //nolint:errcheck // best-effort CLI output
				}
				if err := formatter.WriteTables(stdout, report.Semantics); err != nil {
					return err
				}
			}
			return exitWith(code)
		},
	}
}
