// Copyright © 2024 The ELPS authors

package analysis

import (
	"errors"
	"fmt"

	"github.com/luthersystems/splcheck/ast"
	"github.com/luthersystems/splcheck/types"
)

// SymbolKind classifies a variable declaration.
type SymbolKind int

const (
	SymGlobal    SymbolKind = iota // GLOBVARS
	SymLocal                       // LOCVARS
	SymParameter                   // formal parameter in a HEADER
)

func (k SymbolKind) String() string {
	switch k {
	case SymGlobal:
		return "global"
	case SymLocal:
		return "local"
	case SymParameter:
		return "parameter"
	default:
		return "unknown"
	}
}

// SymbolKey identifies one declaration. The declaring node keeps distinct
// declarations apart even when name and scope collide.
type SymbolKey struct {
	Scope ScopeID
	Name  string
	Node  ast.NodeID
}

// Symbol is a Symbol Table entry.
type Symbol struct {
	Key   SymbolKey
	Name  string
	Kind  SymbolKind
	Type  types.Type
	Scope *Scope
	Node  *ast.Node // the declaring VNAME
}

// ErrDuplicate is returned by Insert when the scope already declares the
// name.
var ErrDuplicate = errors.New("duplicate declaration")

type scopedName struct {
	scope ScopeID
	name  string
}

// SymbolTable is the append-only collection of variable declarations
// across all scopes.
type SymbolTable struct {
	entries []*Symbol
	byKey   map[SymbolKey]*Symbol
	byName  map[scopedName]*Symbol
}

// NewSymbolTable returns an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		byKey:  make(map[SymbolKey]*Symbol),
		byName: make(map[scopedName]*Symbol),
	}
}

// Insert appends sym, filling in its key. It fails with ErrDuplicate when
// sym's scope already declares the name.
func (t *SymbolTable) Insert(sym *Symbol) error {
	sym.Key = SymbolKey{Scope: sym.Scope.ID, Name: sym.Name, Node: sym.Node.ID}
	sn := scopedName{sym.Scope.ID, sym.Name}
	if prev, ok := t.byName[sn]; ok {
		return fmt.Errorf("%w: %s already declared in %s at node %d", ErrDuplicate, sym.Name, sym.Scope.Name, prev.Node.ID)
	}
	t.entries = append(t.entries, sym)
	t.byKey[sym.Key] = sym
	t.byName[sn] = sym
	return nil
}

// Get returns the entry for key, or nil.
func (t *SymbolTable) Get(key SymbolKey) *Symbol {
	return t.byKey[key]
}

// LookupLocal returns the declaration of name in scope itself, or nil.
func (t *SymbolTable) LookupLocal(scope *Scope, name string) *Symbol {
	return t.byName[scopedName{scope.ID, name}]
}

// Resolve walks from scope up through its ancestors and returns the
// nearest declaration of name, or nil.
func (t *SymbolTable) Resolve(scope *Scope, name string) *Symbol {
	for s := scope; s != nil; s = s.Parent {
		if sym := t.LookupLocal(s, name); sym != nil {
			return sym
		}
	}
	return nil
}

// InScope returns the declarations made directly in scope, in order.
func (t *SymbolTable) InScope(scope *Scope) []*Symbol {
	var out []*Symbol
	for _, sym := range t.entries {
		if sym.Scope == scope {
			out = append(out, sym)
		}
	}
	return out
}

// Entries returns every declaration in insertion order.
func (t *SymbolTable) Entries() []*Symbol {
	return t.entries
}

// Len returns the number of declarations.
func (t *SymbolTable) Len() int {
	return len(t.entries)
}
