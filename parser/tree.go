// Copyright © 2024 The ELPS authors

package parser

import (
	"sort"

	"github.com/luthersystems/splcheck/ast"
	parsec "github.com/prataprc/goparsec"
)

// Tree notation grammar:
//
//	tree    := <comment>* <list> <comment>*
//	list    := '(' <label> <item>* ')'
//	item    := <comment> | <list> | <leaf>
//	leaf    := <quoted> | <barred> | <symbol>
//	quoted  := "[^"\n]*"            kept verbatim, quotes included
//	barred  := \|[^|\n]*\|          bars stripped; for leaves with blanks
//	symbol  := [^\s()"#|]+
//	comment := #[^\n]*
//
// ';' is an SPL terminal, so comments start with '#'.

func newTreeParser(idx *lineIndex) parsec.Parser {
	openP := parsec.Atom("(", "OPENP")
	closeP := parsec.Atom(")", "CLOSEP")
	comment := parsec.Token(`#[^\n]*`, "COMMENT")
	quoted := parsec.Token(`"[^"\n]*"`, "QUOTED")
	barred := parsec.Token(`\|[^|\n]*\|`, "BARRED")
	symbol := parsec.Token(`[^\s()"#|]+`, "SYMBOL")
	leaf := parsec.OrdChoice(leafNode(idx), quoted, barred, symbol)
	var item parsec.Parser // forward declaration allows for recursive parsing
	items := parsec.Kleene(nil, &item)
	list := parsec.And(listNode(idx), openP, symbol, items, closeP)
	item = parsec.OrdChoice(nil, comment, list, leaf)
	return parsec.OrdChoice(nil, comment, list)
}

// ParseTree decodes tree notation. Node ids are assigned in pre-order.
func ParseTree(text []byte, name string) (*ast.Tree, error) {
	idx := newLineIndex(name, text)
	p := newTreeParser(idx)
	s := parsec.NewScanner(text)

	var roots []*ast.Node
	node, s := p(s)
	for node != nil {
		flat, err := flatten([]parsec.ParsecNode{node})
		if err != nil {
			return nil, err
		}
		for _, f := range flat {
			if n, ok := f.(*ast.Node); ok {
				roots = append(roots, n)
			}
		}
		node, s = p(s)
	}
	_, s = s.SkipWS()
	if !s.Endof() {
		pos := idx.pos(s.GetCursor())
		b, _ := s.Match(`[^\n]{1,16}`)
		if len(b) > 0 && b[0] == '(' {
			return nil, errorf(pos, "unterminated or malformed list starting: %s", b)
		}
		return nil, errorf(pos, "unexpected text starting: %s", b)
	}
	switch {
	case len(roots) == 0:
		return nil, errorf(ast.Position{File: name}, "no tree found")
	case len(roots) > 1:
		return nil, errorf(roots[1].Pos, "more than one root node")
	}
	ast.Number(roots[0])
	return ast.NewTree(roots[0])
}

func leafNode(idx *lineIndex) parsec.Nodify {
	return func(ns []parsec.ParsecNode) parsec.ParsecNode {
		flat, err := flatten(ns)
		if err != nil {
			return err
		}
		if len(flat) == 0 {
			return nil
		}
		term, ok := flat[0].(*parsec.Terminal)
		if !ok {
			return flat[0]
		}
		text := term.Value
		if term.Name == "BARRED" {
			text = text[1 : len(text)-1]
		}
		leaf := ast.Leaf(text)
		leaf.Pos = idx.pos(term.Position)
		return leaf
	}
}

func listNode(idx *lineIndex) parsec.Nodify {
	return func(ns []parsec.ParsecNode) parsec.ParsecNode {
		flat, err := flatten(ns)
		if err != nil {
			return err
		}
		if len(flat) < 3 {
			return errorf(ast.Position{File: idx.file}, "malformed list")
		}
		open, _ := flat[0].(*parsec.Terminal)
		label, ok := flat[1].(*parsec.Terminal)
		if open == nil || !ok {
			return errorf(ast.Position{File: idx.file}, "malformed list")
		}
		kind := ast.KindOf(label.Value)
		if kind == ast.Terminal {
			return errorf(idx.pos(label.Position), "unknown production %q", label.Value)
		}
		n := ast.New(kind)
		n.Pos = idx.pos(open.Position)
		for _, c := range flat[2 : len(flat)-1] {
			if child, ok := c.(*ast.Node); ok {
				n.Children = append(n.Children, child)
			}
		}
		return n
	}
}

// flatten expands nested node lists, drops comments and returns the first
// error produced by a nodify callback.
func flatten(ns []parsec.ParsecNode) ([]parsec.ParsecNode, error) {
	var out []parsec.ParsecNode
	for _, n := range ns {
		switch n := n.(type) {
		case nil:
		case error:
			return nil, n
		case *parsec.Terminal:
			if n.Name == "COMMENT" {
				continue
			}
			out = append(out, n)
		case []parsec.ParsecNode:
			sub, err := flatten(n)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		default:
			out = append(out, n)
		}
	}
	return out, nil
}

// Depth returns the number of lists left open at the end of text. It is
// negative when text closes more lists than it opens. Parentheses inside
// comments and leaves are ignored.
func Depth(text []byte) int {
	depth := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '(':
			depth++
		case ')':
			depth--
		case '#':
			for i < len(text) && text[i] != '\n' {
				i++
			}
		case '"', '|':
			delim := text[i]
			for i++; i < len(text) && text[i] != delim && text[i] != '\n'; i++ {
			}
		}
	}
	return depth
}

// lineIndex converts byte offsets into 1-based line and column numbers.
type lineIndex struct {
	file   string
	starts []int
}

func newLineIndex(file string, text []byte) *lineIndex {
	starts := []int{0}
	for i, b := range text {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{file: file, starts: starts}
}

func (x *lineIndex) pos(offset int) ast.Position {
	line := sort.Search(len(x.starts), func(i int) bool { return x.starts[i] > offset })
	if line == 0 {
		line = 1
	}
	return ast.Position{File: x.file, Line: line, Col: offset - x.starts[line-1] + 1}
}
