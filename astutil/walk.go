// Copyright © 2024 The ELPS authors

// Package astutil provides shared syntax tree walking utilities.
//
// These helpers are used by the analysis, typecheck and formatter packages
// and by the command line tools.
package astutil

import (
	"strings"

	"github.com/luthersystems/splcheck/ast"
)

// Walk calls fn for every node under root in pre-order. parent is nil for
// root.
func Walk(root *ast.Node, fn func(node *ast.Node, parent *ast.Node, depth int)) {
	walkNode(root, nil, 0, fn)
}

func walkNode(node *ast.Node, parent *ast.Node, depth int, fn func(*ast.Node, *ast.Node, int)) {
	if node == nil {
		return
	}
	fn(node, parent, depth)
	for _, child := range node.Children {
		walkNode(child, node, depth+1, fn)
	}
}

// WalkKind calls fn for every node of the given kind under root.
func WalkKind(root *ast.Node, kind ast.Kind, fn func(node *ast.Node)) {
	Walk(root, func(node *ast.Node, _ *ast.Node, _ int) {
		if node.Kind == kind {
			fn(node)
		}
	})
}

// Find returns every node under root for which match returns true, in
// pre-order.
func Find(root *ast.Node, match func(*ast.Node) bool) []*ast.Node {
	var out []*ast.Node
	Walk(root, func(node *ast.Node, _ *ast.Node, _ int) {
		if match(node) {
			out = append(out, node)
		}
	})
	return out
}

// Path renders the chain of labels from the root down to n, for example
// "PROG > FUNCTIONS > DECL > HEADER > FNAME".
func Path(n *ast.Node) string {
	var labels []string
	for ; n != nil; n = n.Parent {
		labels = append(labels, n.Label())
	}
	for i, j := 0, len(labels)-1; i < j; i, j = i+1, j-1 {
		labels[i], labels[j] = labels[j], labels[i]
	}
	return strings.Join(labels, " > ")
}

// Enclosing returns the nearest proper ancestor of n with the given kind, or
// nil.
func Enclosing(n *ast.Node, kind ast.Kind) *ast.Node {
	if n == nil {
		return nil
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Kind == kind {
			return p
		}
	}
	return nil
}

// DeclName returns the FNAME node of a DECL, or nil when the declaration is
// malformed.
func DeclName(decl *ast.Node) *ast.Node {
	if decl == nil || decl.Kind != ast.Decl {
		return nil
	}
	header := decl.Child(ast.Header)
	if header == nil {
		return nil
	}
	return header.Child(ast.FName)
}

// SourceOf returns the best node to report a location for. It prefers n when
// it carries a position and otherwise falls back to the first descendant
// that does.
func SourceOf(n *ast.Node) *ast.Node {
	if n == nil || n.Pos.IsValid() {
		return n
	}
	var found *ast.Node
	Walk(n, func(node *ast.Node, _ *ast.Node, _ int) {
		if found == nil && node.Pos.IsValid() {
			found = node
		}
	})
	if found != nil {
		return found
	}
	return n
}
