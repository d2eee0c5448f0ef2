// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/muesli/reflow/wordwrap"
)

// DefaultWidth is the column at which notes are wrapped when Renderer.Width
// is zero.
const DefaultWidth = 80

// tabWidth is the number of columns a tab occupies in a snippet.
const tabWidth = 4

// Renderer formats diagnostics as Rust-style annotated source snippets.
// A span that starts at an open paren is underlined up to the matching close
// paren, so a whole node is marked; any other span marks one leaf.
type Renderer struct {
	// Color controls ANSI color output. Default is ColorAuto.
	Color ColorMode

	// Width is the wrap column for notes. Zero means DefaultWidth and a
	// negative value disables wrapping.
	Width int

	// SourceReader reads source file contents. If nil, os.ReadFile is used.
	SourceReader func(string) ([]byte, error)
}

// Render writes a single diagnostic to w.
func (r *Renderer) Render(w io.Writer, d Diagnostic) error {
	return r.RenderAll(w, []Diagnostic{d})
}

// RenderAll writes all diagnostics to w separated by blank lines. Each
// source file is read at most once.
func (r *Renderer) RenderAll(w io.Writer, diags []Diagnostic) error {
	sw := &snippetWriter{
		p:     choosePalette(r.Color, fileFromWriter(w)),
		width: r.Width,
		src:   &sourceCache{read: r.SourceReader, lines: make(map[string][]string)},
	}
	if sw.width == 0 {
		sw.width = DefaultWidth
	}
	for i, d := range diags {
		if i > 0 {
			sw.sb.WriteByte('\n')
		}
		sw.diagnostic(d)
	}
	_, err := io.WriteString(w, sw.sb.String())
	return err
}

// snippetWriter accumulates the rendering of a batch of diagnostics.
type snippetWriter struct {
	sb    strings.Builder
	p     palette
	width int
	src   *sourceCache

	// gutter is the width of the line-number column of the diagnostic being
	// written.
	gutter int
}

func (sw *snippetWriter) printf(format string, a ...interface{}) {
	fmt.Fprintf(&sw.sb, format, a...)
}

func (sw *snippetWriter) diagnostic(d Diagnostic) {
	sw.gutter = 1
	for _, span := range d.Spans {
		if n := len(strconv.Itoa(span.Line)); n > sw.gutter {
			sw.gutter = n
		}
	}

	sw.header(d)
	if len(d.Spans) == 0 {
		sw.nodeLocation(d)
	}
	for _, span := range d.Spans {
		sw.span(span)
	}
	if len(d.Spans) > 0 && d.Path != "" {
		sw.note("in " + d.Path)
	}
	for _, note := range d.Notes {
		sw.note(note)
	}
}

func (sw *snippetWriter) header(d Diagnostic) {
	p := sw.p
	sw.printf("%s%s%s[%s]%s: %s%s%s\n",
		p.severity[d.Severity], p.bold, d.Severity, d.Code(), p.reset,
		p.bold, d.Message, p.reset)
}

// bar writes an empty gutter line, followed by text when it is not empty.
func (sw *snippetWriter) bar(text string) {
	sw.printf(" %s%*s |%s", sw.p.gutter, sw.gutter, "", sw.p.reset)
	if text != "" {
		sw.printf("  %s", text)
	}
	sw.sb.WriteByte('\n')
}

func (sw *snippetWriter) arrow(loc string) {
	sw.printf(" %s%*s-->%s %s\n", sw.p.gutter, sw.gutter, "", sw.p.reset, loc)
}

// nodeLocation is used when the tree carried no source positions: the node
// id and its label path stand in for the snippet.
func (sw *snippetWriter) nodeLocation(d Diagnostic) {
	sw.arrow(fmt.Sprintf("node %d", d.Node))
	if d.Path == "" {
		sw.bar("")
		return
	}
	sw.bar(sw.p.path + d.Path + sw.p.reset)
}

func (sw *snippetWriter) span(span Span) {
	p := sw.p
	loc := span.File
	switch {
	case span.Line > 0 && span.Col > 0:
		loc = fmt.Sprintf("%s:%d:%d", span.File, span.Line, span.Col)
	case span.Line > 0:
		loc = fmt.Sprintf("%s:%d", span.File, span.Line)
	}
	sw.arrow(loc)

	source, ok := sw.src.line(span.File, span.Line)
	if !ok {
		sw.bar("")
		return
	}

	col := max(span.Col, 1)
	end := span.EndCol
	if end <= 0 {
		end = nodeExtent(source, col)
	}
	end = max(end, col)

	sw.bar("")
	sw.printf(" %s%*d |%s  %s\n", p.gutter, sw.gutter, span.Line, p.reset, expandTabs(source))
	lead := ""
	if col-1 <= len(source) {
		lead = source[:col-1]
	}
	marks := p.marker + strings.Repeat("^", end-col+1) + p.reset
	if span.Label != "" {
		marks += " " + p.marker + span.Label + p.reset
	}
	sw.bar(strings.Repeat(" ", displayWidth(lead)) + marks)
	sw.bar("")
}

func (sw *snippetWriter) note(note string) {
	const prefix = "   = note: "
	if sw.width > len(prefix)+10 {
		note = wordwrap.String(note, sw.width-len(prefix))
		note = strings.ReplaceAll(note, "\n", "\n"+strings.Repeat(" ", len(prefix)))
	}
	sw.printf("   %s=%s note: %s\n", sw.p.note, sw.p.reset, note)
}

// sourceCache holds the lines of every file read during one render.
type sourceCache struct {
	read  func(string) ([]byte, error)
	lines map[string][]string
}

// line returns the 1-based line of file. Unreadable files are remembered as
// empty.
func (c *sourceCache) line(file string, line int) (string, bool) {
	if file == "" || line <= 0 {
		return "", false
	}
	lines, ok := c.lines[file]
	if !ok {
		read := c.read
		if read == nil {
			read = func(name string) ([]byte, error) {
				return os.ReadFile(name) //nolint:gosec // reads user-specified tree files for display
			}
		}
		if data, err := read(file); err == nil {
			lines = strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
		}
		c.lines[file] = lines
	}
	if line > len(lines) {
		return "", false
	}
	return lines[line-1], true
}

// nodeExtent returns the 1-based column of the last character of the item
// starting at col: the matching paren of a node, the closing bar of a
// |quoted| leaf, or the end of a bare leaf. A node that continues past the
// end of the line is marked up to its last non-blank character.
func nodeExtent(source string, col int) int {
	if col <= 0 || col > len(source) {
		return col
	}
	i := col - 1
	switch source[i] {
	case '(':
		depth := 0
		for j := i; j < len(source); j++ {
			switch source[j] {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					return j + 1
				}
			case '|':
				if k := strings.IndexByte(source[j+1:], '|'); k >= 0 {
					j += k + 1
				}
			}
		}
		return len(strings.TrimRight(source, " \t"))
	case '|':
		if k := strings.IndexByte(source[i+1:], '|'); k >= 0 {
			return i + k + 2
		}
		return col
	}
	end := i
	for end < len(source) {
		ch, size := utf8.DecodeRuneInString(source[end:])
		if ch == ' ' || ch == '\t' || ch == ')' || ch == '(' {
			break
		}
		end += size
	}
	if end == i {
		return col
	}
	return end
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

// displayWidth returns the display width of s, expanding tabs.
func displayWidth(s string) int {
	w := 0
	for _, ch := range s {
		if ch == '\t' {
			w += tabWidth
		} else {
			w++
		}
	}
	return w
}

func fileFromWriter(w io.Writer) *os.File {
	if f, ok := w.(*os.File); ok {
		return f
	}
	return nil
}
