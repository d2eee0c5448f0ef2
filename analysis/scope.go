// Copyright © 2024 The ELPS authors

package analysis

import (
	"strings"

	"github.com/luthersystems/splcheck/ast"
)

// ScopeID addresses a scope within one Result. Ids are assigned in
// declaration order; the program scope is always RootID.
type ScopeID int

const (
	// RootID is the id of the program scope.
	RootID ScopeID = 0
	// RootName is the name of the program scope.
	RootName = "main"
)

// Scope is a named region in which variable declarations are visible: the
// program itself or one function body.
type Scope struct {
	ID       ScopeID
	Name     string
	Parent   *Scope
	Children []*Scope
	// Node is the FNAME node of the declaration that opened the scope, or
	// the PROG node for the root.
	Node *ast.Node
}

// IsRoot reports whether s is the program scope.
func (s *Scope) IsRoot() bool {
	return s.Parent == nil
}

// Child returns the immediate child scope with the given name, or nil.
func (s *Scope) Child(name string) *Scope {
	for _, c := range s.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Ancestors returns s followed by each enclosing scope up to the root.
func (s *Scope) Ancestors() []*Scope {
	var out []*Scope
	for scope := s; scope != nil; scope = scope.Parent {
		out = append(out, scope)
	}
	return out
}

// Depth is the number of enclosing scopes; the root has depth 0.
func (s *Scope) Depth() int {
	d := 0
	for scope := s.Parent; scope != nil; scope = scope.Parent {
		d++
	}
	return d
}

// Path joins scope names from the root down, e.g. "main/F_a/F_b".
func (s *Scope) Path() string {
	anc := s.Ancestors()
	names := make([]string, len(anc))
	for i, scope := range anc {
		names[len(anc)-1-i] = scope.Name
	}
	return strings.Join(names, "/")
}

func (s *Scope) String() string {
	return s.Name
}
