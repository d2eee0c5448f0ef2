// Copyright © 2024 The ELPS authors

package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf_RoundTrip(t *testing.T) {
	for _, k := range Kinds() {
		assert.Equal(t, k, KindOf(k.String()), k.String())
	}
	assert.Equal(t, Terminal, KindOf("begin"))
	assert.Equal(t, Terminal, KindOf("V_x"))
	assert.Equal(t, "UNKNOWN", Kind(-1).String())
	assert.Equal(t, "UNKNOWN", numKinds.String())
}

func TestNumber_PreOrder(t *testing.T) {
	root := New(Atomic, New(VName, Leaf("V_a")))
	tree := Build(root)
	require.Equal(t, 3, tree.Len())
	assert.Equal(t, NodeID(0), root.ID)
	assert.Equal(t, NodeID(1), root.Children[0].ID)
	assert.Equal(t, NodeID(2), root.Children[0].Children[0].ID)
	assert.Same(t, root.Children[0], tree.Node(1))
	assert.Nil(t, tree.Node(42))
}

func TestNewTree_LinksParents(t *testing.T) {
	leaf := Leaf("V_a")
	name := New(VName, leaf)
	root := New(Atomic, name)
	tree := Build(root)
	assert.Nil(t, tree.Root.Parent)
	assert.Same(t, root, name.Parent)
	assert.Same(t, name, leaf.Parent)
}

func TestNewTree_Errors(t *testing.T) {
	tests := []struct {
		name string
		root func() *Node
		msg  string
	}{
		{"nil root", func() *Node { return nil }, "nil root"},
		{"nil child", func() *Node { return &Node{Kind: Atomic, ID: 0, Children: []*Node{nil}} }, "nil child"},
		{"duplicate id", func() *Node {
			return &Node{Kind: Atomic, ID: 1, Children: []*Node{{Kind: VName, ID: 1}}}
		}, "duplicate node id 1"},
		{"terminal with children", func() *Node {
			return &Node{Kind: Terminal, Text: "x", ID: 0, Children: []*Node{{Kind: Terminal, ID: 1}}}
		}, "has children"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTree(tt.root())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
	assert.Panics(t, func() { MustTree(nil) })
}

func TestNode_Helpers(t *testing.T) {
	n := New(Simple, New(Binop, Leaf("eq")), Leaf("("), New(Atomic), Leaf(","), New(Atomic), Leaf(")"))
	assert.Equal(t, "eq", n.Child(Binop).Word())
	assert.Len(t, n.ChildrenOf(Atomic), 2)
	assert.Len(t, n.Nonterminals(), 3)
	assert.Equal(t, []string{"(", ",", ")"}, n.Words())
	assert.True(t, n.HasWord(","))
	assert.False(t, n.HasWord("eq"))
	assert.Nil(t, n.Child(Call))
	assert.Equal(t, "", New(VName).Word())
	assert.Equal(t, "SIMPLE", n.Label())
	assert.Equal(t, "eq", n.Child(Binop).Children[0].Label())
	assert.True(t, n.Children[1].IsTerminal())
	assert.Equal(t, "SIMPLE#0", n.String())
	assert.Equal(t, "<nil>", (*Node)(nil).String())
}

func TestPosition_String(t *testing.T) {
	assert.Equal(t, "a.tree", Position{File: "a.tree"}.String())
	assert.Equal(t, "a.tree:3", Position{File: "a.tree", Line: 3}.String())
	assert.Equal(t, "a.tree:3:7", Position{File: "a.tree", Line: 3, Col: 7}.String())
	assert.False(t, Position{}.IsValid())
}
