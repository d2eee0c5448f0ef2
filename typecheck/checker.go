// Copyright © 2024 The ELPS authors

// Package typecheck infers and checks the types of an SPL program whose
// scope tree has already been built.
//
// The checker makes one pre-order pass mirroring the grammar, with one method
// per production. It keeps its own scope cursor, which only moves when a
// function declaration is entered. Call sites are typed against the callee's
// registered signature and leave the cursor where it is.
//
// The first error ends the pass. Constructs whose operands failed type as
// Undefined, which is never reported again.
package typecheck

import (
	"io"

	"github.com/luthersystems/splcheck/analysis"
	"github.com/luthersystems/splcheck/ast"
	"github.com/luthersystems/splcheck/astutil"
	"github.com/luthersystems/splcheck/diagnostic"
	"github.com/luthersystems/splcheck/types"
	"github.com/sirupsen/logrus"
)

// Config controls the type checker.
type Config struct {
	// Logger receives debug traces. Nil discards them.
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

// Result holds the outcome of a type check.
type Result struct {
	// Types maps every typed node to its inferred type. Nodes checked
	// before the first error keep their entries.
	Types map[ast.NodeID]types.Type
	// Diagnostics holds at most one entry.
	Diagnostics []diagnostic.Diagnostic
	OK          bool
}

// TypeOf returns the inferred type of n, or Undefined.
func (r *Result) TypeOf(n *ast.Node) types.Type {
	if n == nil {
		return types.Undefined
	}
	return r.Types[n.ID]
}

// Check type-checks tree using the tables built for it by analysis.Build.
// The scope tree must be complete; Check does not create scopes or symbols.
func Check(tree *ast.Tree, sem *analysis.Result, cfg *Config) *Result {
	c := &checker{
		sem:     sem,
		log:     cfg.logger(),
		current: sem.Root,
		res:     &Result{Types: make(map[ast.NodeID]types.Type)},
	}
	c.prog(tree.Root)
	c.res.OK = !c.failed
	c.log.WithFields(logrus.Fields{
		"typed": len(c.res.Types),
		"ok":    c.res.OK,
	}).Debug("type check finished")
	return c.res
}

type checker struct {
	sem *analysis.Result
	res *Result
	log logrus.FieldLogger

	// current is the scope whose declarations are visible, moved only by
	// decl.
	current *analysis.Scope
	failed  bool
}

// fail reports the first error of the pass and returns Undefined. Later
// calls only return Undefined.
func (c *checker) fail(kind diagnostic.Kind, n *ast.Node, format string, args ...interface{}) types.Type {
	if c.failed {
		return types.Undefined
	}
	c.failed = true
	d := astutil.Errorf(kind, n, format, args...)
	c.res.Diagnostics = append(c.res.Diagnostics, d)
	c.log.WithFields(logrus.Fields{
		"node":  n.ID,
		"scope": c.current.Path(),
		"code":  d.Code(),
	}).Debug(d.Message)
	return types.Undefined
}

func (c *checker) mismatch(n *ast.Node, format string, args ...interface{}) types.Type {
	return c.fail(diagnostic.TypeMismatch, n, format, args...)
}

func (c *checker) malformed(n *ast.Node, format string, args ...interface{}) types.Type {
	return c.fail(diagnostic.MalformedNode, n, format, args...)
}

// record stores t as the type of n and returns it.
func (c *checker) record(n *ast.Node, t types.Type) types.Type {
	if t != types.Undefined {
		c.res.Types[n.ID] = t
	}
	return t
}

// require fetches the child of n with the given kind, reporting a malformed
// node when it is missing.
func (c *checker) require(n *ast.Node, kind ast.Kind) *ast.Node {
	child := n.Child(kind)
	if child == nil {
		c.malformed(n, "%s has no %s", n.Label(), kind)
	}
	return child
}
