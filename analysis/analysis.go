// Copyright © 2024 The ELPS authors

// Package analysis builds the scope tree of an SPL program and validates
// its call sites.
//
// Build walks the syntax tree once, creating one scope per function
// declaration and filling the Symbol and Function tables. Calls are only
// recorded during that walk; ValidateCalls checks them against the finished
// scope tree, since a call may name a subfunction declared later in the
// text.
package analysis

import (
	"io"

	"github.com/luthersystems/splcheck/ast"
	"github.com/luthersystems/splcheck/diagnostic"
	"github.com/luthersystems/splcheck/types"
	"github.com/sirupsen/logrus"
)

// Config controls the behavior of the scope builder.
type Config struct {
	// Logger receives debug traces of declarations, scopes and calls. Nil
	// discards them.
	Logger logrus.FieldLogger
}

func (c *Config) logger() logrus.FieldLogger {
	if c != nil && c.Logger != nil {
		return c.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// CallSite is a call recorded during the build and resolved afterwards.
type CallSite struct {
	Callee string
	// Scope is the scope the call was made from.
	Scope *Scope
	// Node is the callee's FNAME node inside the CALL.
	Node *ast.Node
}

// Result holds the frozen output of the scope builder.
type Result struct {
	Tree      *ast.Tree
	Root      *Scope
	Scopes    []*Scope // indexed by ScopeID
	Symbols   *SymbolTable
	Functions *FunctionTable
	Calls     []CallSite

	// Diagnostics holds at most one entry: the first violation found.
	Diagnostics []diagnostic.Diagnostic
	// Suppressed counts violations found after the first one.
	Suppressed int
	OK         bool
}

// Scope returns the scope with the given id, or nil.
func (r *Result) Scope(id ScopeID) *Scope {
	if id < 0 || int(id) >= len(r.Scopes) {
		return nil
	}
	return r.Scopes[id]
}

// Main returns the pre-registered program function.
func (r *Result) Main() *Function {
	return r.Functions.ByScope(RootID)
}

// Build walks tree in pre-order and constructs its scope tree and tables.
// The walk always completes, even after a violation, so the tables are as
// complete as the program allows.
func Build(tree *ast.Tree, cfg *Config) *Result {
	root := &Scope{ID: RootID, Name: RootName, Node: tree.Root}
	res := &Result{
		Tree:      tree,
		Root:      root,
		Scopes:    []*Scope{root},
		Symbols:   NewSymbolTable(),
		Functions: NewFunctionTable(),
	}
	res.Functions.insert(&Function{Name: RootName, Return: types.Void, Scope: root, Node: tree.Root})

	b := &builder{
		res:        res,
		log:        cfg.logger(),
		current:    root,
		declParent: root,
	}
	if tree.Root.Kind != ast.Prog {
		b.report(diagnostic.MalformedNode, tree.Root, "tree root is %s, want PROG", tree.Root.Label())
	}
	b.visit(tree.Root)

	res.OK = !b.failed
	b.log.WithFields(logrus.Fields{
		"scopes":     len(res.Scopes),
		"symbols":    res.Symbols.Len(),
		"functions":  res.Functions.Len(),
		"calls":      len(res.Calls),
		"suppressed": res.Suppressed,
		"ok":         res.OK,
	}).Debug("scope tree built")
	return res
}
