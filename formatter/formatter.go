// Copyright © 2024 The ELPS authors

// Package formatter writes syntax trees and analysis tables in readable
// form: canonical tree notation, YAML, and the scope, symbol and function
// table dumps.
package formatter

import (
	"bytes"
	"strconv"

	"github.com/luthersystems/splcheck/ast"
	"github.com/luthersystems/splcheck/parser"
	"gopkg.in/yaml.v3"
)

// Format writes tree in canonical tree notation. If cfg is nil,
// DefaultConfig() is used. Reading the output back yields a tree with the
// same shape and pre-order ids.
func Format(tree *ast.Tree, cfg *Config) ([]byte, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	pr := newPrinter(cfg)
	pr.writeNode(tree.Root, 0)
	pr.newline()
	if pr.err != nil {
		return nil, pr.err
	}
	return pr.buf.Bytes(), nil
}

// FormatFile decodes source in any supported encoding, using filename to
// choose the decoder and for error messages, and re-prints it in tree
// notation.
func FormatFile(source []byte, filename string, cfg *Config) ([]byte, error) {
	tree, err := parser.Parse(source, filename, parser.FormatAuto)
	if err != nil {
		return nil, err
	}
	return Format(tree, cfg)
}

// FormatYAML writes tree in the YAML encoding read by parser.ParseYAML.
// With ids set every node carries its id; otherwise ids are left for the
// reader to assign.
func FormatYAML(tree *ast.Tree, ids bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(yamlNode(tree.Root, ids)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func yamlScalar(tag, v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v}
}

func yamlNode(n *ast.Node, ids bool) *yaml.Node {
	id := yamlScalar("!!int", strconv.Itoa(int(n.ID)))
	if n.IsTerminal() {
		if !ids {
			return yamlScalar("!!str", n.Text)
		}
		return &yaml.Node{
			Kind:  yaml.MappingNode,
			Style: yaml.FlowStyle,
			Content: []*yaml.Node{
				yamlScalar("!!str", "text"), yamlScalar("!!str", n.Text),
				yamlScalar("!!str", "id"), id,
			},
		}
	}
	m := &yaml.Node{Kind: yaml.MappingNode}
	m.Content = append(m.Content, yamlScalar("!!str", "label"), yamlScalar("!!str", n.Label()))
	if ids {
		m.Content = append(m.Content, yamlScalar("!!str", "id"), id)
	}
	if len(n.Children) > 0 {
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, c := range n.Children {
			seq.Content = append(seq.Content, yamlNode(c, ids))
		}
		m.Content = append(m.Content, yamlScalar("!!str", "children"), seq)
	}
	return m
}
