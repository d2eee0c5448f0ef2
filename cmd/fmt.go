// Copyright © 2024 The ELPS authors

package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/luthersystems/splcheck/ast"
	"github.com/luthersystems/splcheck/formatter"
	"github.com/luthersystems/splcheck/parser"
	"github.com/spf13/cobra"
)

type fmtFlags struct {
	write      bool
	diff       bool
	list       bool
	to         string
	ids        bool
	indentSize int
	maxWidth   int
	excludes   []string
}

// FmtCommand returns the fmt subcommand.
func FmtCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts)
	flags := &fmtFlags{}
	cmd := &cobra.Command{
		Use:   "fmt [flags] [files...]",
		Short: "Format SPL syntax trees",
		Long: `Format SPL syntax trees, similar to gofmt for Go.

Trees in any supported encoding are printed in canonical tree notation, or
in YAML with --to yaml. The formatter is idempotent, and reading its output
back yields a tree with the same shape and node ids.

With no files, reads from stdin and writes to stdout.
With files, prints formatted output to stdout unless -w is given.

Modes:
  (default)   Print formatted trees to stdout
  -w          Write result back to source file (tree notation only)
  -d          Display a diff of changes
  -l          List files that would be changed

Examples:
  splcheck fmt prog.tree               Print formatted output
  splcheck fmt -w prog.tree            Format in place
  splcheck fmt -l ./...                List trees needing formatting
  splcheck fmt --to yaml prog.xml      Convert a tree to YAML
  splcheck fmt --to yaml --ids a.tree  Convert keeping node ids
  cat prog.tree | splcheck fmt         Format from stdin`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(cmd, cfg, flags, args)
		},
	}
	cmd.Flags().BoolVarP(&flags.write, "write", "w", false,
		"Write result to (source) file instead of stdout.")
	cmd.Flags().BoolVarP(&flags.diff, "diff", "d", false,
		"Display diffs instead of rewriting files.")
	cmd.Flags().BoolVarP(&flags.list, "list", "l", false,
		"List files whose formatting differs from splcheck fmt's.")
	cmd.Flags().StringVar(&flags.to, "to", "tree",
		`Output encoding: "tree" or "yaml".`)
	cmd.Flags().BoolVar(&flags.ids, "ids", false,
		"Keep node ids in YAML output.")
	cmd.Flags().IntVar(&flags.indentSize, "indent-size", 2,
		"Number of spaces per indentation level.")
	cmd.Flags().IntVar(&flags.maxWidth, "max-width", 80,
		"Column limit before a node is broken over several lines.")
	cmd.Flags().StringArrayVar(&flags.excludes, "exclude", nil,
		"Glob pattern for files to exclude (may be repeated).")
	return cmd
}

// treeFormatter renders a parsed tree in the selected output encoding.
type treeFormatter func(*ast.Tree) ([]byte, error)

func newTreeFormatter(flags *fmtFlags) (treeFormatter, error) {
	switch flags.to {
	case "tree":
		cfg := formatter.DefaultConfig()
		cfg.IndentSize = flags.indentSize
		cfg.MaxWidth = flags.maxWidth
		return func(t *ast.Tree) ([]byte, error) { return formatter.Format(t, cfg) }, nil
	case "yaml":
		if flags.write {
			return nil, fmt.Errorf("-w requires --to tree")
		}
		return func(t *ast.Tree) ([]byte, error) { return formatter.FormatYAML(t, flags.ids) }, nil
	}
	return nil, fmt.Errorf("unknown output encoding %q (want tree or yaml)", flags.to)
}

func runFmt(cmd *cobra.Command, cfg *cmdConfig, flags *fmtFlags, args []string) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	render, err := newTreeFormatter(flags)
	if err != nil {
		fmt.Fprintf(stderr, "splcheck fmt: %v\n", err) //nolint:errcheck // best-effort CLI output
		return exitWith(exitUsage)
	}
	format, err := inputFormat()
	if err != nil {
		fmt.Fprintln(stderr, err) //nolint:errcheck // best-effort CLI output
		return exitWith(exitUsage)
	}

	if len(args) == 0 {
		sources, err := readSources(nil, cfg.stdin)
		if err != nil {
			fmt.Fprintln(stderr, err) //nolint:errcheck // best-effort CLI output
			return exitWith(exitRejected)
		}
		out, err := formatSource(sources[0], format, render)
		if err != nil {
			fmt.Fprintln(stderr, err) //nolint:errcheck // best-effort CLI output
			return exitWith(exitRejected)
		}
		_, err = stdout.Write(out)
		return err
	}

	files, err := expandArgs(args, flags.excludes)
	if err != nil {
		fmt.Fprintln(stderr, err) //nolint:errcheck // best-effort CLI output
		return exitWith(exitRejected)
	}
	code := exitOK
	for _, path := range files {
		changed, err := fmtFile(stdout, path, format, render, flags)
		if err != nil {
			fmt.Fprintln(stderr, err) //nolint:errcheck // best-effort CLI output
			code = exitRejected
		} else if flags.list && changed {
			code = exitRejected
		}
	}
	return exitWith(code)
}

func formatSource(src source, format parser.Format, render treeFormatter) ([]byte, error) {
	tree, err := parser.Parse(src.data, src.name, format)
	if err != nil {
		return nil, err
	}
	out, err := render(tree)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.name, err)
	}
	return out, nil
}

func fmtFile(w io.Writer, path string, format parser.Format, render treeFormatter, flags *fmtFlags) (bool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // CLI tool reads user-specified files
	if err != nil {
		return false, err
	}
	out, err := formatSource(source{name: path, data: data}, format, render)
	if err != nil {
		return false, err
	}

	changed := !bytes.Equal(data, out)

	if flags.list {
		if changed {
			fmt.Fprintln(w, path) //nolint:errcheck // best-effort CLI output
		}
		return changed, nil
	}

	if flags.diff {
		if changed {
			printUnifiedDiff(w, path, data, out)
		}
		return changed, nil
	}

	if flags.write {
		if !changed {
			return false, nil
		}
		info, err := os.Stat(path)
		if err != nil {
			return false, err
		}
		return true, os.WriteFile(path, out, info.Mode().Perm())
	}

	_, err = w.Write(out)
	return changed, err
}

// printUnifiedDiff writes a line-by-line diff of original and formatted.
// Lines are paired greedily, so a moved line shows as removed and added.
func printUnifiedDiff(w io.Writer, path string, original, formatted []byte) {
	fmt.Fprintf(w, "--- %s\n", path) //nolint:errcheck // best-effort CLI output
	fmt.Fprintf(w, "+++ %s\n", path) //nolint:errcheck // best-effort CLI output

	origLines := splitLines(original)
	fmtLines := splitLines(formatted)

	i, j := 0, 0
	for i < len(origLines) || j < len(fmtLines) {
		switch {
		case i < len(origLines) && j < len(fmtLines) && origLines[i] == fmtLines[j]:
			fmt.Fprintf(w, " %s\n", origLines[i]) //nolint:errcheck // best-effort CLI output
			i++
			j++
		case i < len(origLines):
			fmt.Fprintf(w, "-%s\n", origLines[i]) //nolint:errcheck // best-effort CLI output
			i++
		default:
			fmt.Fprintf(w, "+%s\n", fmtLines[j]) //nolint:errcheck // best-effort CLI output
			j++
		}
	}
}

func splitLines(data []byte) []string {
	lines := bytes.SplitAfter(data, []byte("\n"))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		out = append(out, string(bytes.TrimSuffix(line, []byte("\n"))))
	}
	return out
}
