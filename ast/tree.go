// Copyright © 2024 The ELPS authors

package ast

import (
	"errors"
	"fmt"
)

// ErrNoRoot is returned by NewTree when given a nil root.
var ErrNoRoot = errors.New("ast: nil root")

// Tree is a finished syntax tree with parent links and an id index.
type Tree struct {
	Root *Node
	byID map[NodeID]*Node
}

// NewTree links every node to its parent and indexes nodes by id. Node ids
// must be unique; use Number first when the producer did not assign them.
func NewTree(root *Node) (*Tree, error) {
	if root == nil {
		return nil, ErrNoRoot
	}
	t := &Tree{Root: root, byID: make(map[NodeID]*Node)}
	var link func(n, parent *Node) error
	link = func(n, parent *Node) error {
		if n == nil {
			return fmt.Errorf("ast: nil child of %s", parent)
		}
		if prev, ok := t.byID[n.ID]; ok {
			return fmt.Errorf("ast: duplicate node id %d (%s and %s)", n.ID, prev.Label(), n.Label())
		}
		if n.Kind == Terminal && len(n.Children) > 0 {
			return fmt.Errorf("ast: terminal %q (id %d) has children", n.Text, n.ID)
		}
		n.Parent = parent
		t.byID[n.ID] = n
		for _, c := range n.Children {
			if err := link(c, n); err != nil {
				return err
			}
		}
		return nil
	}
	root.Parent = nil
	if err := link(root, nil); err != nil {
		return nil, err
	}
	return t, nil
}

// MustTree is like NewTree but panics on error. It is intended for trees
// built in code, where an error is a programming mistake.
func MustTree(root *Node) *Tree {
	t, err := NewTree(root)
	if err != nil {
		panic(err)
	}
	return t
}

// Number assigns pre-order ids starting at zero, matching the numbering of
// the reference parser.
func Number(root *Node) {
	next := NodeID(0)
	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		n.ID = next
		next++
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
}

// Build numbers the nodes under root and wraps them in a Tree.
func Build(root *Node) *Tree {
	Number(root)
	return MustTree(root)
}

// Node returns the node with the given id, or nil.
func (t *Tree) Node(id NodeID) *Node {
	return t.byID[id]
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	return len(t.byID)
}
