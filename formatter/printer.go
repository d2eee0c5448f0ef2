// Copyright © 2024 The ELPS authors

package formatter

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/luthersystems/splcheck/ast"
)

var (
	symbolLeaf = regexp.MustCompile(`^[^\s()"#|]+$`)
	quotedLeaf = regexp.MustCompile(`^"[^"\n]*"$`)
)

// leafText returns the tree-notation spelling of a terminal.
func leafText(s string) (string, error) {
	switch {
	case symbolLeaf.MatchString(s), quotedLeaf.MatchString(s):
		return s, nil
	case !strings.ContainsAny(s, "|\n"):
		return "|" + s + "|", nil
	}
	return "", fmt.Errorf("terminal %q cannot be written in tree notation", s)
}

type printer struct {
	buf   bytes.Buffer
	cfg   *Config
	col   int  // current column (0-indexed)
	atBOL bool // at beginning of line (nothing written on current line)
	err   error
}

func newPrinter(cfg *Config) *printer {
	return &printer{
		cfg:   cfg,
		atBOL: true,
	}
}

func (p *printer) leaf(n *ast.Node) string {
	s, err := leafText(n.Text)
	if err != nil {
		if p.err == nil {
			p.err = fmt.Errorf("node %d: %w", n.ID, err)
		}
		return n.Text
	}
	return s
}

// inline renders n on a single line.
func (p *printer) inline(n *ast.Node) string {
	if n.IsTerminal() {
		return p.leaf(n)
	}
	var sb strings.Builder
	sb.WriteByte('(')
	sb.WriteString(n.Label())
	for _, c := range n.Children {
		sb.WriteByte(' ')
		sb.WriteString(p.inline(c))
	}
	sb.WriteByte(')')
	return sb.String()
}

// writeNode writes n starting at the current column. indent is the column
// the node's opening paren sits at.
func (p *printer) writeNode(n *ast.Node, indent int) {
	if n.IsTerminal() {
		p.writeString(p.leaf(n))
		return
	}
	layout := p.cfg.LayoutFor(n.Kind)
	if layout != LayoutBreak {
		s := p.inline(n)
		if layout == LayoutInline || p.col+len(s) <= p.cfg.MaxWidth {
			p.writeString(s)
			return
		}
	}
	p.writeBroken(n, indent)
}

// writeBroken keeps the label and any leading terminals on the opening line
// and puts every following child on its own line.
func (p *printer) writeBroken(n *ast.Node, indent int) {
	p.writeString("(" + n.Label())
	childIndent := indent + p.cfg.IndentSize
	leading := true
	for _, c := range n.Children {
		if leading && c.IsTerminal() {
			p.writeString(" " + p.leaf(c))
			continue
		}
		leading = false
		p.newline()
		p.writeIndent(childIndent)
		p.writeNode(c, childIndent)
	}
	p.writeString(")")
}

// writeIndent writes spaces to reach the desired column.
func (p *printer) writeIndent(col int) {
	if !p.atBOL {
		return
	}
	for i := 0; i < col; i++ {
		p.buf.WriteByte(' ')
	}
	p.col = col
	p.atBOL = false
}

// writeString writes a string that contains no newline.
func (p *printer) writeString(s string) {
	if p.atBOL && s != "" {
		p.atBOL = false
	}
	p.buf.WriteString(s)
	p.col += len(s)
}

// newline writes a newline and marks beginning of line.
func (p *printer) newline() {
	p.buf.WriteByte('\n')
	p.col = 0
	p.atBOL = true
}
