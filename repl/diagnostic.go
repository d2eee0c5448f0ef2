// Copyright © 2024 The ELPS authors

package repl

import (
	"fmt"
	"io"

	"github.com/luthersystems/splcheck/check"
	"github.com/luthersystems/splcheck/diagnostic"
)

// renderReport prints the diagnostics of a report followed by its verdict.
// Spans point into src, which is served to the renderer in place of a file.
func renderReport(w io.Writer, report *check.Report, src []byte, color diagnostic.ColorMode) {
	r := &diagnostic.Renderer{
		Color: color,
		SourceReader: func(name string) ([]byte, error) {
			if name == SourceName {
				return src, nil
			}
			return nil, fmt.Errorf("no source for %s", name)
		},
	}
	_ = r.RenderAll(w, report.Diagnostics)
	fmt.Fprintln(w, verdictLine(report)) //nolint:errcheck // best-effort REPL output
}

func verdictLine(report *check.Report) string {
	ran := 0
	for _, ph := range report.Phases {
		if !ph.Skipped {
			ran++
		}
	}
	return fmt.Sprintf("%s (%d of %d phases, %d diagnostics)",
		report.Verdict(), ran, len(report.Phases), len(report.Diagnostics))
}
