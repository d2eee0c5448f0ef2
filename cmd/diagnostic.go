// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/luthersystems/splcheck/diagnostic"
)

// stdinName is the file name given to trees read from standard input.
const stdinName = "<stdin>"

// newRenderer returns a renderer for the configured color mode. Spans in
// stdinSource, when non-nil, are served from memory.
func newRenderer(stdinSource []byte) *diagnostic.Renderer {
	r := &diagnostic.Renderer{Color: colorMode()}
	if stdinSource != nil {
		r.SourceReader = func(name string) ([]byte, error) {
			if name == stdinName {
				return stdinSource, nil
			}
			return os.ReadFile(name) //nolint:gosec // CLI tool reads user-specified files
		}
	}
	return r
}

// renderDiagnostics renders diags with source snippets to w.
func renderDiagnostics(w io.Writer, diags []diagnostic.Diagnostic, stdinSource []byte) {
	_ = newRenderer(stdinSource).RenderAll(w, diags)
}

// source is one tree file named on the command line, or standard input.
type source struct {
	name string
	data []byte
}

func (s source) stdin() []byte {
	if s.name == stdinName {
		return s.data
	}
	return nil
}

// readSources reads every named file, or r when names is empty.
func readSources(names []string, r io.Reader) ([]source, error) {
	if len(names) == 0 {
		if r == nil {
			r = os.Stdin
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return []source{{name: stdinName, data: data}}, nil
	}
	out := make([]source, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(name) //nolint:gosec // CLI tool reads user-specified files
		if err != nil {
			return nil, err
		}
		out = append(out, source{name: name, data: data})
	}
	return out, nil
}
