// Copyright © 2024 The ELPS authors

package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/luthersystems/splcheck/check"
	"github.com/luthersystems/splcheck/parser"
	"github.com/spf13/cobra"
	"go.opencensus.io/stats/view"
)

func phaseDoc() string {
	var b strings.Builder
	for _, ph := range check.DefaultPhases() {
		summary, _, _ := strings.Cut(ph.Doc, "\n")
		fmt.Fprintf(&b, "  %-8s %s\n", ph.Name, summary)
	}
	return b.String()
}

type checkFlags struct {
	json     bool
	phases   string
	list     bool
	stats    bool
	excludes []string
}

// CheckCommand returns the check subcommand.
func CheckCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts)
	flags := &checkFlags{}
	cmd := &cobra.Command{
		Use:   "check [flags] [files...]",
		Short: "Check SPL syntax trees",
		Long: `Check SPL syntax trees.

Each tree runs through the phases below in order. The first phase that
reports an error stops the run and the program is rejected; the remaining
phases are skipped.

With no files, reads one tree from stdin. Diagnostics are written to stderr
and the verdict of each tree to stdout.

Exit codes:
  0  Every program was accepted
  1  One or more programs were rejected
  2  Bad invocation (invalid flags, unreadable or unparsable files)

Phases (use --phases to select specific ones):
` + phaseDoc() + `
Examples:
  splcheck check prog.tree                 # Check a single tree
  splcheck check ./...                     # Check every tree below .
  splcheck check --json prog.yaml          # Print the report as JSON
  splcheck check --phases=scope prog.xml   # Build the scope tree only
  splcheck check --exclude=gen_* ./...     # Skip generated trees
  cat prog.tree | splcheck check           # Check a tree from stdin`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, cfg, flags, args)
		},
	}
	cmd.Flags().BoolVar(&flags.json, "json", false,
		"Print each report as JSON.")
	cmd.Flags().StringVar(&flags.phases, "phases", "",
		"Comma-separated list of phases to run (default: all).")
	cmd.Flags().BoolVar(&flags.list, "list", false,
		"List available phases and exit.")
	cmd.Flags().BoolVar(&flags.stats, "stats", false,
		"Print program and diagnostic counts to stderr when done.")
	cmd.Flags().StringArrayVar(&flags.excludes, "exclude", nil,
		"Glob pattern for files to exclude (may be repeated).")
	return cmd
}

func runCheck(cmd *cobra.Command, cfg *cmdConfig, flags *checkFlags, args []string) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	if flags.list {
		for _, ph := range check.DefaultPhases() {
			fmt.Fprintln(stdout, ph.Name) //nolint:errcheck // best-effort CLI output
		}
		return nil
	}

	phases, err := selectPhases(flags.phases)
	if err != nil {
		fmt.Fprintf(stderr, "splcheck check: %v\n", err) //nolint:errcheck // best-effort CLI output
		return exitWith(exitUsage)
	}
	format, err := inputFormat()
	if err != nil {
		fmt.Fprintln(stderr, err) //nolint:errcheck // best-effort CLI output
		return exitWith(exitUsage)
	}
	files, err := expandArgs(args, flags.excludes)
	if err != nil {
		fmt.Fprintln(stderr, err) //nolint:errcheck // best-effort CLI output
		return exitWith(exitUsage)
	}
	if len(args) > 0 && len(files) == 0 {
		return nil
	}
	sources, err := readSources(files, cfg.stdin)
	if err != nil {
		fmt.Fprintln(stderr, err) //nolint:errcheck // best-effort CLI output
		return exitWith(exitUsage)
	}

	if flags.stats {
		if err := check.RegisterViews(); err != nil {
			return err
		}
		defer check.UnregisterViews()
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	checker := cfg.checker(phases)
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
		if flags.json {
			if err := report.FormatJSON(stdout); err != nil {
				return err
			}
		} else {
			renderDiagnostics(stderr, report.Diagnostics, src.stdin())
			fmt.Fprintf(stdout, "%s: %s\n", src.name, report.Verdict()) //nolint:errcheck // best-effort CLI output
		}
		if !report.OK && code == exitOK {
			code = exitRejected
		}
	}

	if flags.stats {
		writeStats(stderr)
	}
	return exitWith(code)
}

// selectPhases resolves a comma-separated list of phase names. An empty
// list selects the default phases.
func selectPhases(list string) ([]*check.Phase, error) {
	if list == "" {
		return nil, nil
	}
	var phases []*check.Phase
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		ph := check.PhaseNamed(name)
		if ph == nil {
			return nil, fmt.Errorf("unknown phase: %s", name)
		}
		phases = append(phases, ph)
	}
	return phases, nil
}

// writeStats prints the rows of the checker's views, one per tag value.
func writeStats(w io.Writer) {
	for _, v := range []*view.View{check.ProgramsView, check.DiagnosticsView} {
		rows, err := view.RetrieveData(v.Name)
		if err != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			count, ok := row.Data.(*view.CountData)
			if !ok || len(row.Tags) == 0 {
				continue
			}
			lines = append(lines, fmt.Sprintf("%s{%s=%s} %d",
				v.Name, row.Tags[0].Key.Name(), row.Tags[0].Value, count.Value))
		}
		sort.Strings(lines)
		for _, line := range lines {
			fmt.Fprintln(w, line) //nolint:errcheck // best-effort CLI output
		}
	}
}
