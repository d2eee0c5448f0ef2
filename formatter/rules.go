// Copyright © 2024 The ELPS authors

package formatter

import "github.com/luthersystems/splcheck/ast"

// Layout determines how a node's children are placed.
type Layout int

const (
	// LayoutAuto writes the node on one line when it fits within MaxWidth
	// and breaks it otherwise.
	LayoutAuto Layout = iota
	// LayoutBreak always starts each child list on its own line.
	LayoutBreak
	// LayoutInline always writes the node on one line.
	LayoutInline
)

// Config holds formatting configuration.
type Config struct {
	IndentSize int                 // spaces per indent level (default: 2)
	MaxWidth   int                 // column limit for LayoutAuto (default: 80)
	Rules      map[ast.Kind]Layout // production -> layout
}

// DefaultConfig returns the default formatting configuration.
func DefaultConfig() *Config {
	return &Config{
		IndentSize: 2,
		MaxWidth:   80,
		Rules:      DefaultRules(),
	}
}

// DefaultRules returns the default layout table. The program and function
// skeleton is always broken so that declarations line up.
func DefaultRules() map[ast.Kind]Layout {
	return map[ast.Kind]Layout{
		ast.Prog: LayoutBreak,
		ast.Decl: LayoutBreak,
		ast.Body: LayoutBreak,

		ast.VTyp:   LayoutInline,
		ast.VName:  LayoutInline,
		ast.FTyp:   LayoutInline,
		ast.FName:  LayoutInline,
		ast.Const:  LayoutInline,
		ast.Unop:   LayoutInline,
		ast.Binop:  LayoutInline,
		ast.Prolog: LayoutInline,
		ast.Epilog: LayoutInline,
	}
}

// LayoutFor returns the layout for the given production.
func (c *Config) LayoutFor(kind ast.Kind) Layout {
	if l, ok := c.Rules[kind]; ok {
		return l
	}
	return LayoutAuto
}
