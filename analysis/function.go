// Copyright © 2024 The ELPS authors

package analysis

import (
	"github.com/luthersystems/splcheck/ast"
	"github.com/luthersystems/splcheck/types"
)

// Arity is the number of formal parameters every function declares.
const Arity = 3

// Function is a Function Table entry.
type Function struct {
	Name   string
	Return types.Type
	// Params holds the formal parameters in declaration order. It is empty
	// for main and has Arity entries for a well-formed declaration.
	Params []*Symbol
	// Scope is the scope the function body opens.
	Scope *Scope
	// Node is the declaring FNAME, or the PROG node for main.
	Node *ast.Node
}

// IsMain reports whether f is the pre-registered program entry.
func (f *Function) IsMain() bool {
	return f.Scope.IsRoot()
}

// FunctionTable holds one entry per function declaration.
type FunctionTable struct {
	entries []*Function
	byScope map[ScopeID]*Function
	byNode  map[ast.NodeID]*Function
}

// NewFunctionTable returns an empty table.
func NewFunctionTable() *FunctionTable {
	return &FunctionTable{
		byScope: make(map[ScopeID]*Function),
		byNode:  make(map[ast.NodeID]*Function),
	}
}

func (t *FunctionTable) insert(f *Function) {
	t.entries = append(t.entries, f)
	t.byScope[f.Scope.ID] = f
	t.byNode[f.Node.ID] = f
}

// ByScope returns the function whose body opens the scope id, or nil.
func (t *FunctionTable) ByScope(id ScopeID) *Function {
	return t.byScope[id]
}

// ByNode returns the function declared by the given FNAME node, or nil.
func (t *FunctionTable) ByNode(id ast.NodeID) *Function {
	return t.byNode[id]
}

// Resolve finds the function a call to name made from scope refers to:
// scope's own function when the names match, otherwise an immediate
// subfunction. It returns nil when neither exists.
func (t *FunctionTable) Resolve(from *Scope, name string) *Function {
	if from.Name == name {
		return t.byScope[from.ID]
	}
	if child := from.Child(name); child != nil {
		return t.byScope[child.ID]
	}
	return nil
}

// Entries returns every function in declaration order, main first.
func (t *FunctionTable) Entries() []*Function {
	return t.entries
}

// Len returns the number of functions, main included.
func (t *FunctionTable) Len() int {
	return len(t.entries)
}
