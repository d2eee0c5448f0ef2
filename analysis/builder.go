// Copyright © 2024 The ELPS authors

package analysis

import (
	"fmt"

	"github.com/luthersystems/splcheck/ast"
	"github.com/luthersystems/splcheck/astutil"
	"github.com/luthersystems/splcheck/diagnostic"
	"github.com/luthersystems/splcheck/types"
	"github.com/sirupsen/logrus"
)

// builder is the traversal context of a single Build run.
type builder struct {
	res *Result
	log logrus.FieldLogger

	// current is the scope the walk is in.
	current *Scope
	// declParent receives new function declarations: the root under
	// PROG > FUNCTIONS and the enclosing function inside SUBFUNCS.
	declParent *Scope

	varType       types.Type
	hasVarType    bool
	returnType    types.Type
	hasReturnType bool

	// params counts formal parameters still to be declared for paramsOf.
	params   int
	paramsOf *Function

	inCall bool
	failed bool
	// skipping is set when a function declaration is rejected; the rest of
	// that DECL has no scope to live in and is not walked.
	skipping bool
}

func (b *builder) visit(n *ast.Node) {
	switch n.Kind {
	case ast.VTyp:
		b.visitVarType(n)
		return
	case ast.FTyp:
		b.visitReturnType(n)
		return
	case ast.VName:
		b.visitVarName(n)
		return
	case ast.FName:
		b.visitFuncName(n)
		return
	case ast.Call:
		b.inCall = true
		b.visitChildren(n)
		if b.inCall {
			b.inCall = false
			b.report(diagnostic.MalformedNode, n, "call has no function name")
		}
		return
	case ast.SubFuncs:
		saved := b.declParent
		b.declParent = b.current
		b.visitChildren(n)
		b.declParent = saved
		return
	case ast.Header:
		b.visitChildren(n)
		if b.params > 0 && b.paramsOf != nil {
			b.report(diagnostic.MalformedNode, n, "function %s has %d parameters, want %d",
				b.paramsOf.Name, Arity-b.params, Arity)
		}
		b.params = 0
		b.paramsOf = nil
		return
	case ast.Decl:
		saved := b.current
		b.visitChildren(n)
		if b.current != saved {
			b.log.WithField("scope", b.current.Path()).Debug("leave scope")
		}
		b.current = saved
		b.params = 0
		b.paramsOf = nil
		b.skipping = false
		return
	}
	b.visitChildren(n)
}

func (b *builder) visitChildren(n *ast.Node) {
	for _, c := range n.Children {
		if b.skipping {
			return
		}
		b.visit(c)
	}
}

func (b *builder) visitVarType(n *ast.Node) {
	kw := n.Word()
	t, ok := types.VarType(kw)
	if !ok {
		b.report(diagnostic.MalformedNode, n, "invalid variable type %q (want num or text)", kw)
	}
	b.varType, b.hasVarType = t, true
}

func (b *builder) visitReturnType(n *ast.Node) {
	kw := n.Word()
	t, ok := types.ReturnType(kw)
	if !ok {
		b.report(diagnostic.MalformedNode, n, "invalid return type %q (want num or void)", kw)
	}
	b.returnType, b.hasReturnType = t, true
}

func (b *builder) visitVarName(n *ast.Node) {
	name := n.Word()
	switch {
	case b.params > 0:
		b.params--
		if name == "" {
			b.report(diagnostic.MalformedNode, n, "parameter has no name")
			return
		}
		sym := b.declare(n, name, types.Numeric, SymParameter)
		if sym != nil && b.paramsOf != nil {
			b.paramsOf.Params = append(b.paramsOf.Params, sym)
		}
	case b.hasVarType:
		t := b.varType
		b.hasVarType = false
		b.hasReturnType = false
		if name == "" {
			b.report(diagnostic.MalformedNode, n, "declaration has no variable name")
			return
		}
		kind := SymLocal
		if b.current.IsRoot() {
			kind = SymGlobal
		}
		b.declare(n, name, t, kind)
	default:
		if name == "" {
			b.report(diagnostic.MalformedNode, n, "variable reference has no name")
			return
		}
		if b.res.Symbols.Resolve(b.current, name) == nil {
			b.report(diagnostic.UndeclaredVariable, n,
				"undeclared variable %s in scope %s", name, b.current.Name)
		}
	}
}

func (b *builder) declare(n *ast.Node, name string, t types.Type, kind SymbolKind) *Symbol {
	if prev := b.res.Symbols.LookupLocal(b.current, name); prev != nil {
		b.reportWithNotes(diagnostic.DuplicateDeclaration, n,
			[]string{fmt.Sprintf("previous declaration is node %d", prev.Node.ID)},
			"%s is already declared in scope %s", name, b.current.Name)
		return nil
	}
	sym := &Symbol{Name: name, Kind: kind, Type: t, Scope: b.current, Node: n}
	if err := b.res.Symbols.Insert(sym); err != nil {
		b.report(diagnostic.DuplicateDeclaration, n, "%v", err)
		return nil
	}
	b.log.WithFields(logrus.Fields{
		"name":  name,
		"type":  t,
		"kind":  kind,
		"scope": b.current.Path(),
		"node":  n.ID,
	}).Debug("declare variable")
	return sym
}

func (b *builder) visitFuncName(n *ast.Node) {
	name := n.Word()
	if b.inCall {
		b.inCall = false
		if name == "" {
			b.report(diagnostic.MalformedNode, n, "call has no function name")
			return
		}
		b.res.Calls = append(b.res.Calls, CallSite{Callee: name, Scope: b.current, Node: n})
		b.log.WithFields(logrus.Fields{
			"callee": name,
			"scope":  b.current.Path(),
			"node":   n.ID,
		}).Debug("record call")
		return
	}

	ret, hasRet := b.returnType, b.hasReturnType
	b.hasReturnType = false
	if name == "" {
		b.report(diagnostic.MalformedNode, n, "function declaration has no name")
		b.skipping = true
		return
	}
	parent := b.declParent
	if name == parent.Name {
		b.report(diagnostic.SelfNamedAsParent, n,
			"function %s has the same name as its enclosing scope", name)
		b.skipping = true
		return
	}
	if parent.Child(name) != nil {
		b.report(diagnostic.SiblingNameConflict, n,
			"function %s is already declared in scope %s", name, parent.Name)
		b.skipping = true
		return
	}
	if !hasRet {
		b.report(diagnostic.MalformedNode, n, "function %s has no return type", name)
	}

	scope := &Scope{ID: ScopeID(len(b.res.Scopes)), Name: name, Parent: parent, Node: n}
	parent.Children = append(parent.Children, scope)
	b.res.Scopes = append(b.res.Scopes, scope)
	b.current = scope

	fn := &Function{Name: name, Return: ret, Scope: scope, Node: n}
	b.res.Functions.insert(fn)
	b.params = Arity
	b.paramsOf = fn

	b.log.WithFields(logrus.Fields{
		"function": name,
		"return":   ret,
		"scope":    scope.Path(),
		"id":       scope.ID,
	}).Debug("open scope")
}

func (b *builder) report(kind diagnostic.Kind, n *ast.Node, format string, args ...interface{}) {
	b.reportWithNotes(kind, n, nil, format, args...)
}

// reportWithNotes records the first violation only; later ones are
// counted so the walk can finish without cascading diagnostics.
func (b *builder) reportWithNotes(kind diagnostic.Kind, n *ast.Node, notes []string, format string, args ...interface{}) {
	d := astutil.Errorf(kind, n, format, args...)
	if b.failed {
		b.res.Suppressed++
		b.log.WithFields(logrus.Fields{
			"kind": kind,
			"node": n.ID,
		}).Debug("suppressed: " + d.Message)
		return
	}
	b.failed = true
	d.Notes = append(d.Notes, notes...)
	b.res.Diagnostics = append(b.res.Diagnostics, d)
}
