// Copyright © 2024 The ELPS authors

// Package ast defines the syntax tree consumed by the semantic checker.
//
// Trees are produced by an external parser (or by one of the readers in the
// parser package) and are treated as read-only once wrapped in a Tree.
package ast

import "fmt"

// NodeID uniquely identifies a node within a tree.
type NodeID int

// Position is an optional source location attached by readers that know it.
// The zero value means unknown.
type Position struct {
	File string
	Line int // 1-based
	Col  int // 1-based
}

// IsValid reports whether the position carries a line number.
func (p Position) IsValid() bool {
	return p.Line > 0
}

func (p Position) String() string {
	switch {
	case p.Line == 0:
		return p.File
	case p.Col == 0:
		return fmt.Sprintf("%s:%d", p.File, p.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
	}
}

// Node is a labeled tree node. Parent is a non-owning back reference set by
// NewTree.
type Node struct {
	Kind     Kind
	Text     string // terminal text, empty for non-terminals
	ID       NodeID
	Children []*Node
	Parent   *Node
	Pos      Position
}

// New returns a non-terminal node of the given kind.
func New(kind Kind, children ...*Node) *Node {
	return &Node{Kind: kind, Children: children}
}

// Leaf returns a terminal node.
func Leaf(text string) *Node {
	return &Node{Kind: Terminal, Text: text}
}

// Label returns the grammar symbol of n: the terminal text for leaves and the
// production label otherwise.
func (n *Node) Label() string {
	if n.Kind == Terminal {
		return n.Text
	}
	return n.Kind.String()
}

// IsTerminal reports whether n is a leaf token.
func (n *Node) IsTerminal() bool {
	return n.Kind == Terminal
}

// Child returns the first child of the given kind, or nil.
func (n *Node) Child(kind Kind) *Node {
	for _, c := range n.Children {
		if c.Kind == kind {
			return c
		}
	}
	return nil
}

// ChildrenOf returns all children of the given kind in order.
func (n *Node) ChildrenOf(kind Kind) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// Nonterminals returns the children that are not terminal tokens.
func (n *Node) Nonterminals() []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Kind != Terminal {
			out = append(out, c)
		}
	}
	return out
}

// Word returns the text of the first terminal child, or "" if there is none.
// Name and type nodes (VNAME, FNAME, VTYP, FTYP, CONST, UNOP, BINOP) carry
// their payload this way.
func (n *Node) Word() string {
	for _, c := range n.Children {
		if c.Kind == Terminal {
			return c.Text
		}
	}
	return ""
}

// Words returns the text of every terminal child.
func (n *Node) Words() []string {
	var out []string
	for _, c := range n.Children {
		if c.Kind == Terminal {
			out = append(out, c.Text)
		}
	}
	return out
}

// HasWord reports whether a direct terminal child has exactly the text w.
func (n *Node) HasWord(w string) bool {
	for _, c := range n.Children {
		if c.Kind == Terminal && c.Text == w {
			return true
		}
	}
	return false
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s#%d", n.Label(), n.ID)
}
