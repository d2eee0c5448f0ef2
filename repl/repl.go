// Copyright © 2018 The ELPS authors

// Package repl implements an interactive loop that reads syntax trees in
// tree notation and checks each one as soon as its parentheses balance.
package repl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	"github.com/luthersystems/splcheck/ast"
	"github.com/luthersystems/splcheck/check"
	"github.com/luthersystems/splcheck/diagnostic"
	"github.com/luthersystems/splcheck/formatter"
	"github.com/luthersystems/splcheck/parser"
)

// SourceName is the file name given to trees read by the loop.
const SourceName = "<stdin>"

type config struct {
	stdin   io.ReadCloser
	stderr  io.Writer
	checker *check.Checker
	color   diagnostic.ColorMode
	history string
}

func newConfig(opts ...Option) *config {
	config := &config{history: historyPath()}
	for _, opt := range opts {
		opt(config)
	}
	if config.checker == nil {
		config.checker = &check.Checker{}
	}
	return config
}

type Option func(*config)

// WithStdin allows overriding the input to the REPL.
func WithStdin(stdin io.ReadCloser) Option {
	return func(c *config) {
		c.stdin = stdin
	}
}

// WithStderr allows overriding the output of the REPL.
func WithStderr(stderr io.Writer) Option {
	return func(c *config) {
		c.stderr = stderr
	}
}

// WithChecker sets the checker programs are run through.
func WithChecker(checker *check.Checker) Option {
	return func(c *config) {
		c.checker = checker
	}
}

// WithColor sets the color mode of rendered diagnostics.
func WithColor(mode diagnostic.ColorMode) Option {
	return func(c *config) {
		c.color = mode
	}
}

// WithHistoryFile sets the history file. An empty path disables history.
func WithHistoryFile(path string) Option {
	return func(c *config) {
		c.history = path
	}
}

// session is the state of one loop.
type session struct {
	cfg *config
	out io.Writer

	// last is the most recent tree that parsed, and report its result.
	last   *ast.Tree
	report *check.Report
	source []byte
}

// Run reads trees until end of input or ctx is done. Input lines
// accumulate until their parentheses balance; the completed tree is then
// checked and its diagnostics rendered. Lines starting with ':' outside a
// tree are commands; ":help" lists them.
func Run(ctx context.Context, prompt string, opts ...Option) error {
	cfg := newConfig(opts...)
	out := cfg.stderr
	if out == nil {
		out = os.Stderr
	}
	cont := strings.Repeat(" ", len(prompt))

	ensureHistoryFilePermissions(cfg.history)
	rlCfg := &readline.Config{
		Stdout:            out,
		Stderr:            out,
		Prompt:            prompt,
		HistoryFile:       cfg.history,
		HistorySearchFold: true,
		AutoComplete:      &labelCompleter{},
	}
	if cfg.stdin != nil {
		rlCfg.Stdin = cfg.stdin
	}
	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close() //nolint:errcheck // best-effort cleanup

	s := &session{cfg: cfg, out: out}
	var buf bytes.Buffer
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if buf.Len() == 0 {
			rl.SetPrompt(prompt)
		} else {
			rl.SetPrompt(cont)
		}
		line, err := rl.ReadSlice()
		if errors.Is(err, readline.ErrInterrupt) {
			buf.Reset()
			continue
		}
		if err != nil {
			return nil
		}
		if buf.Len() == 0 {
			trimmed := strings.TrimSpace(string(line))
			if trimmed == "" {
				continue
			}
			if strings.HasPrefix(trimmed, ":") {
				if s.command(trimmed) {
					return nil
				}
				continue
			}
		}
		buf.Write(line)
		buf.WriteByte('\n')
		if parser.Depth(buf.Bytes()) > 0 {
			continue
		}
		src := append([]byte(nil), buf.Bytes()...)
		buf.Reset()
		if err := s.eval(ctx, src); err != nil {
			return err
		}
	}
}

// eval parses and checks one tree. Only cancellation is returned as an
// error; everything else is printed.
func (s *session) eval(ctx context.Context, src []byte) error {
	tree, err := parser.ParseTree(src, SourceName)
	if err != nil {
		fmt.Fprintln(s.out, err) //nolint:errcheck // best-effort error display
		return nil
	}
	report, err := s.cfg.checker.Check(ctx, tree)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		fmt.Fprintln(s.out, err) //nolint:errcheck // best-effort error display
		return nil
	}
	s.last, s.report, s.source = tree, report, src
	renderReport(s.out, report, src, s.cfg.color)
	return nil
}

// command runs a ':' command and reports whether the loop should stop.
func (s *session) command(line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q":
		return true
	case ":help":
		for _, c := range commands {
			fmt.Fprintf(s.out, "%-9s %s\n", c.name, c.doc) //nolint:errcheck // best-effort REPL output
		}
	case ":fmt":
		if s.last == nil {
			fmt.Fprintln(s.out, "no tree yet") //nolint:errcheck // best-effort REPL output
			return false
		}
		out, err := formatter.Format(s.last, nil)
		if err != nil {
			fmt.Fprintln(s.out, err) //nolint:errcheck // best-effort error display
			return false
		}
		s.out.Write(out) //nolint:errcheck,gosec // best-effort REPL output
	case ":tables":
		if s.report == nil || s.report.Semantics == nil {
			fmt.Fprintln(s.out, "no tree yet") //nolint:errcheck // best-effort REPL output
			return false
		}
		if err := formatter.WriteTables(s.out, s.report.Semantics); err != nil {
			fmt.Fprintln(s.out, err) //nolint:errcheck // best-effort error display
		}
	default:
		fmt.Fprintf(s.out, "unknown command %s; try :help\n", fields[0]) //nolint:errcheck // best-effort REPL output
	}
	return false
}

var commands = []struct {
	name, doc string
}{
	{":fmt", "print the last tree in canonical form"},
	{":tables", "print the scope tree and tables of the last tree"},
	{":help", "list commands"},
	{":quit", "leave the loop"},
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".splcheck_history")
}

// ensureHistoryFilePermissions creates the history file with mode 0600, or
// restricts an existing one to that mode.
func ensureHistoryFilePermissions(path string) {
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0600) //nolint:gosec // path is the user's own history file
	if err != nil {
		return
	}
	_ = f.Close()
	_ = os.Chmod(path, 0600)
}
