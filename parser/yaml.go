// Copyright © 2024 The ELPS authors

package parser

import (
	"github.com/luthersystems/splcheck/ast"
	"gopkg.in/yaml.v3"
)

// ParseYAML decodes a tree written as nested YAML mappings:
//
//	label: PROG
//	children:
//	  - main
//	  - label: GLOBVARS
//	  ...
//
// Leaves are plain scalars or mappings with a text field. Every mapping may
// carry an id; when any node lacks one the whole tree is renumbered in
// pre-order.
func ParseYAML(data []byte, name string) (*ast.Tree, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &Error{Pos: ast.Position{File: name}, Msg: "invalid yaml", Err: err}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errorf(ast.Position{File: name}, "no tree found")
	}
	d := &yamlDecoder{file: name}
	root, err := d.node(doc.Content[0])
	if err != nil {
		return nil, err
	}
	if d.missingIDs {
		ast.Number(root)
	}
	return ast.NewTree(root)
}

type yamlDecoder struct {
	file       string
	missingIDs bool
}

func (d *yamlDecoder) pos(y *yaml.Node) ast.Position {
	return ast.Position{File: d.file, Line: y.Line, Col: y.Column}
}

func (d *yamlDecoder) node(y *yaml.Node) (*ast.Node, error) {
	switch y.Kind {
	case yaml.ScalarNode:
		d.missingIDs = true
		leaf := ast.Leaf(y.Value)
		leaf.Pos = d.pos(y)
		return leaf, nil
	case yaml.MappingNode:
		return d.mapping(y)
	case yaml.AliasNode:
		return nil, errorf(d.pos(y), "aliases are not supported in trees")
	default:
		return nil, errorf(d.pos(y), "expected a node mapping or a leaf scalar")
	}
}

func (d *yamlDecoder) mapping(y *yaml.Node) (*ast.Node, error) {
	n := &ast.Node{Pos: d.pos(y)}
	var label, text, children *yaml.Node
	hasID := false
	for i := 0; i+1 < len(y.Content); i += 2 {
		k, v := y.Content[i], y.Content[i+1]
		switch k.Value {
		case "label":
			label = v
		case "text":
			text = v
		case "children":
			children = v
		case "id":
			var id int
			if err := v.Decode(&id); err != nil {
				return nil, &Error{Pos: d.pos(v), Msg: "invalid node id", Err: err}
			}
			n.ID = ast.NodeID(id)
			hasID = true
		default:
			return nil, errorf(d.pos(k), "unknown node field %q", k.Value)
		}
	}
	if !hasID {
		d.missingIDs = true
	}

	switch {
	case label != nil && text != nil:
		return nil, errorf(n.Pos, "node has both label and text")
	case text != nil:
		if children != nil {
			return nil, errorf(d.pos(children), "leaf %q has children", text.Value)
		}
		n.Kind = ast.Terminal
		n.Text = text.Value
		return n, nil
	case label != nil:
		n.Kind = ast.KindOf(label.Value)
		if n.Kind == ast.Terminal {
			return nil, errorf(d.pos(label), "unknown production %q", label.Value)
		}
	default:
		return nil, errorf(n.Pos, "node needs a label or a text field")
	}

	if children == nil {
		return n, nil
	}
	if children.Kind != yaml.SequenceNode {
		return nil, errorf(d.pos(children), "children of %s must be a sequence", n.Kind)
	}
	for _, c := range children.Content {
		child, err := d.node(c)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}
