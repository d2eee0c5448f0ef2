// Copyright © 2024 The ELPS authors

package parser

import (
	"encoding/xml"
	"fmt"

	"github.com/luthersystems/splcheck/ast"
)

// xmlNode covers the element shapes written by the reference parser. The
// nested layout puts NODE elements inside their parent; the flat layout
// lists non-terminals under INNERNODES and leaves under LEAFNODES. Both
// link children through CHILDREN/ID.
type xmlNode struct {
	UNID     int       `xml:"UNID"`
	Symb     string    `xml:"SYMB"`
	Terminal *string   `xml:"TERMINAL"`
	Children []int     `xml:"CHILDREN>ID"`
	Nested   []xmlNode `xml:"NODE"`
}

type xmlTree struct {
	Root   *xmlNode  `xml:"ROOT"`
	Inner  []xmlNode `xml:"INNERNODES>IN"`
	Leaves []xmlNode `xml:"LEAFNODES>LEAF"`
}

// ParseXML decodes a SYNTREE document. Node ids are the document's UNIDs.
func ParseXML(data []byte, name string) (*ast.Tree, error) {
	var doc xmlTree
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, &Error{Pos: ast.Position{File: name}, Msg: "invalid xml", Err: err}
	}
	if doc.Root == nil {
		return nil, errorf(ast.Position{File: name}, "no ROOT element")
	}

	b := &xmlBuilder{
		file:  name,
		nodes: make(map[int]*xmlNode),
		used:  make(map[int]bool),
	}
	if err := b.index(doc.Root); err != nil {
		return nil, err
	}
	for i := range doc.Inner {
		if err := b.index(&doc.Inner[i]); err != nil {
			return nil, err
		}
	}
	for i := range doc.Leaves {
		if err := b.index(&doc.Leaves[i]); err != nil {
			return nil, err
		}
	}
	root, err := b.build(doc.Root.UNID)
	if err != nil {
		return nil, err
	}
	return ast.NewTree(root)
}

type xmlBuilder struct {
	file  string
	nodes map[int]*xmlNode
	used  map[int]bool
}

func (b *xmlBuilder) where() ast.Position {
	return ast.Position{File: b.file}
}

// index records n and its nested descendants. The flat layout repeats the
// root under INNERNODES, so an identical duplicate is accepted.
func (b *xmlBuilder) index(n *xmlNode) error {
	if prev, ok := b.nodes[n.UNID]; ok {
		if prev.Symb != n.Symb || (prev.Terminal == nil) != (n.Terminal == nil) {
			return errorf(b.where(), "conflicting definitions of node %d", n.UNID)
		}
	} else {
		b.nodes[n.UNID] = n
	}
	for i := range n.Nested {
		if err := b.index(&n.Nested[i]); err != nil {
			return err
		}
	}
	return nil
}

func (b *xmlBuilder) build(id int) (*ast.Node, error) {
	x, ok := b.nodes[id]
	if !ok {
		return nil, errorf(b.where(), "child id %d has no NODE element", id)
	}
	if b.used[id] {
		return nil, errorf(b.where(), "node %d appears under more than one parent", id)
	}
	b.used[id] = true

	if x.Terminal != nil {
		if len(x.Children) > 0 {
			return nil, errorf(b.where(), "terminal node %d has children", id)
		}
		leaf := ast.Leaf(*x.Terminal)
		leaf.ID = ast.NodeID(id)
		return leaf, nil
	}
	kind := ast.KindOf(x.Symb)
	if kind == ast.Terminal {
		return nil, errorf(b.where(), "node %d: unknown production %q", id, x.Symb)
	}
	n := ast.New(kind)
	n.ID = ast.NodeID(id)
	for _, cid := range x.Children {
		child, err := b.build(cid)
		if err != nil {
			return nil, fmt.Errorf("under %s: %w", n, err)
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}
