// Copyright © 2024 The ELPS authors

package analysis

import (
	"errors"
	"fmt"
	"testing"

	"github.com/luthersystems/splcheck/ast"
	"github.com/luthersystems/splcheck/ast/build"
	"github.com/luthersystems/splcheck/diagnostic"
	"github.com/luthersystems/splcheck/splctest"
	"github.com/luthersystems/splcheck/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stdLocals = [3]build.VarDecl{
	build.Var("num", "V_d"),
	build.Var("num", "V_e"),
	build.Var("text", "V_f"),
}

// fn declares a function with parameters V_a, V_b, V_c and the standard
// locals.
func fn(ret, name string, algo *ast.Node, sub ...*ast.Node) *ast.Node {
	return build.Decl(build.Func{
		Return: ret,
		Name:   name,
		Params: [3]string{"V_a", "V_b", "V_c"},
		Locals: stdLocals,
		Algo:   algo,
		Sub:    sub,
	})
}

func prog(globals []build.VarDecl, algo *ast.Node, decls ...*ast.Node) *ast.Tree {
	if algo == nil {
		algo = build.Algo(build.Halt())
	}
	return ast.Build(build.Prog(build.GlobVars(globals...), algo, build.Functions(decls...)))
}

func call(name string) *ast.Node {
	return build.CallStmt(build.Call(name, build.Num("1"), build.Num("2"), build.Num("3")))
}

func analyze(t *testing.T, tree *ast.Tree) *Result {
	t.Helper()
	return Build(tree, &Config{Logger: splctest.Logrus(t)})
}

func kinds(diags []diagnostic.Diagnostic) []diagnostic.Kind {
	var out []diagnostic.Kind
	for _, d := range diags {
		out = append(out, d.Kind)
	}
	return out
}

// --- Scope tree ---

func TestBuild_ScopeTree(t *testing.T) {
	tree := prog(
		[]build.VarDecl{build.Var("num", "V_g")},
		nil,
		fn("num", "F_a", nil,
			fn("void", "F_b", nil, fn("num", "F_x", nil)),
			fn("void", "F_c", nil),
		),
		fn("void", "F_d", nil),
	)
	res := analyze(t, tree)
	require.True(t, res.OK, "%v", res.Diagnostics)
	assert.Empty(t, res.Diagnostics)

	var paths []string
	for i, s := range res.Scopes {
		assert.Equal(t, ScopeID(i), s.ID)
		assert.Same(t, s, res.Scope(s.ID))
		paths = append(paths, s.Path())
	}
	assert.Equal(t, []string{"main", "main/F_a", "main/F_a/F_b", "main/F_a/F_b/F_x", "main/F_a/F_c", "main/F_d"}, paths)

	fa := res.Root.Child("F_a")
	require.NotNil(t, fa)
	assert.Len(t, fa.Children, 2, "sibling subfunctions share their parent")
	assert.Same(t, fa, fa.Child("F_c").Parent)
	assert.Equal(t, 3, fa.Child("F_b").Child("F_x").Depth())
	assert.Nil(t, res.Scope(99))
	assert.Nil(t, res.Scope(-1))
	assert.True(t, res.Root.IsRoot())
	assert.Equal(t, "F_x", res.Scopes[3].String())
}

func TestBuild_Tables(t *testing.T) {
	tree := prog(
		[]build.VarDecl{build.Var("num", "V_g"), build.Var("text", "V_h")},
		nil,
		fn("num", "F_a", nil, fn("void", "F_b", nil)),
	)
	res := analyze(t, tree)
	require.True(t, res.OK, "%v", res.Diagnostics)

	// one entry per declaration: 2 globals, 6 per function
	assert.Equal(t, 2+6+6, res.Symbols.Len())

	g := res.Symbols.LookupLocal(res.Root, "V_h")
	require.NotNil(t, g)
	assert.Equal(t, types.Text, g.Type)
	assert.Equal(t, SymGlobal, g.Kind)
	assert.Same(t, g, res.Symbols.Get(g.Key))
	assert.Equal(t, SymbolKey{Scope: RootID, Name: "V_h", Node: g.Node.ID}, g.Key)

	fa := res.Root.Child("F_a")
	params := res.Functions.ByScope(fa.ID).Params
	require.Len(t, params, Arity)
	for i, name := range []string{"V_a", "V_b", "V_c"} {
		assert.Equal(t, name, params[i].Name)
		assert.Equal(t, types.Numeric, params[i].Type)
		assert.Equal(t, SymParameter, params[i].Kind)
	}
	local := res.Symbols.LookupLocal(fa, "V_f")
	require.NotNil(t, local)
	assert.Equal(t, SymLocal, local.Kind)
	assert.Equal(t, types.Text, local.Type)
	assert.Len(t, res.Symbols.InScope(fa), 6)

	require.Equal(t, 3, res.Functions.Len())
	main := res.Main()
	assert.True(t, main.IsMain())
	assert.Equal(t, types.Void, main.Return)
	assert.Empty(t, main.Params)
	fnA := res.Functions.Entries()[1]
	assert.Equal(t, "F_a", fnA.Name)
	assert.Equal(t, types.Numeric, fnA.Return)
	assert.Same(t, fnA, res.Functions.ByNode(fnA.Node.ID))
	assert.Equal(t, types.Void, res.Functions.Entries()[2].Return)
}

func TestBuild_Resolution(t *testing.T) {
	inner := build.Decl(build.Func{
		Return: "void",
		Name:   "F_b",
		Params: [3]string{"V_p", "V_q", "V_r"},
		Locals: [3]build.VarDecl{build.Var("num", "V_s"), build.Var("num", "V_t"), build.Var("num", "V_u")},
		// V_d from F_a, V_g from main
		Algo: build.Algo(build.Print(build.Ref("V_d")), build.Print(build.Ref("V_g")), build.Print(build.Ref("V_p"))),
	})
	tree := prog([]build.VarDecl{build.Var("num", "V_g")}, nil, fn("num", "F_a", nil, inner))
	res := analyze(t, tree)
	assert.True(t, res.OK, "%v", res.Diagnostics)

	fb := res.Root.Child("F_a").Child("F_b")
	assert.Equal(t, "F_a", res.Symbols.Resolve(fb, "V_d").Scope.Name)
	assert.Equal(t, "main", res.Symbols.Resolve(fb, "V_g").Scope.Name)
	assert.Nil(t, res.Symbols.Resolve(res.Root, "V_d"))
}

func TestBuild_Shadowing(t *testing.T) {
	// a local may reuse a global's name; the nearest declaration wins
	tree := prog([]build.VarDecl{build.Var("text", "V_d")}, nil, fn("num", "F_a", nil))
	res := analyze(t, tree)
	require.True(t, res.OK, "%v", res.Diagnostics)
	fa := res.Root.Child("F_a")
	assert.Equal(t, types.Numeric, res.Symbols.Resolve(fa, "V_d").Type)
	assert.Equal(t, types.Text, res.Symbols.Resolve(res.Root, "V_d").Type)
}

// --- Violations ---

func TestBuild_Violations(t *testing.T) {
	tests := []struct {
		name string
		tree func() *ast.Tree
		kind diagnostic.Kind
		msg  string
	}{
		{
			name: "undeclared variable",
			tree: func() *ast.Tree {
				return prog(nil, build.Algo(build.Print(build.Ref("V_z"))))
			},
			kind: diagnostic.UndeclaredVariable,
			msg:  "undeclared variable V_z in scope main",
		},
		{
			name: "local invisible to parent",
			tree: func() *ast.Tree {
				return prog(nil, build.Algo(build.Print(build.Ref("V_d"))), fn("void", "F_a", nil))
			},
			kind: diagnostic.UndeclaredVariable,
			msg:  "undeclared variable V_d",
		},
		{
			name: "sibling locals invisible",
			tree: func() *ast.Tree {
				other := build.Decl(build.Func{
					Return: "void", Name: "F_b",
					Params: [3]string{"V_p", "V_q", "V_r"},
					Locals: [3]build.VarDecl{build.Var("num", "V_s"), build.Var("num", "V_t"), build.Var("num", "V_u")},
					Algo:   build.Algo(build.Print(build.Ref("V_d"))),
				})
				return prog(nil, nil, fn("void", "F_a", nil), other)
			},
			kind: diagnostic.UndeclaredVariable,
			msg:  "undeclared variable V_d in scope F_b",
		},
		{
			name: "duplicate global",
			tree: func() *ast.Tree {
				return prog([]build.VarDecl{build.Var("num", "V_x"), build.Var("text", "V_x")}, nil)
			},
			kind: diagnostic.DuplicateDeclaration,
			msg:  "V_x is already declared in scope main",
		},
		{
			name: "duplicate parameter",
			tree: func() *ast.Tree {
				return prog(nil, nil, build.Decl(build.Func{
					Return: "void", Name: "F_a",
					Params: [3]string{"V_a", "V_a", "V_c"},
					Locals: stdLocals,
				}))
			},
			kind: diagnostic.DuplicateDeclaration,
			msg:  "V_a is already declared in scope F_a",
		},
		{
			name: "local shadows parameter",
			tree: func() *ast.Tree {
				return prog(nil, nil, build.Decl(build.Func{
					Return: "void", Name: "F_a",
					Params: [3]string{"V_d", "V_b", "V_c"},
					Locals: stdLocals,
				}))
			},
			kind: diagnostic.DuplicateDeclaration,
			msg:  "V_d is already declared in scope F_a",
		},
		{
			name: "self named as parent",
			tree: func() *ast.Tree {
				return prog(nil, nil, fn("void", "F_a", nil, fn("void", "F_a", nil)))
			},
			kind: diagnostic.SelfNamedAsParent,
			msg:  "function F_a has the same name as its enclosing scope",
		},
		{
			name: "top level sibling conflict",
			tree: func() *ast.Tree {
				return prog(nil, nil, fn("void", "F_a", nil), fn("num", "F_a", nil))
			},
			kind: diagnostic.SiblingNameConflict,
			msg:  "function F_a is already declared in scope main",
		},
		{
			name: "nested sibling conflict",
			tree: func() *ast.Tree {
				return prog(nil, nil, fn("void", "F_a", nil, fn("void", "F_b", nil), fn("void", "F_b", nil)))
			},
			kind: diagnostic.SiblingNameConflict,
			msg:  "function F_b is already declared in scope F_a",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := analyze(t, tt.tree())
			assert.False(t, res.OK)
			require.Len(t, res.Diagnostics, 1)
			d := res.Diagnostics[0]
			assert.Equal(t, tt.kind, d.Kind)
			assert.Contains(t, d.Message, tt.msg)
			assert.Equal(t, diagnostic.SeverityError, d.Severity)
			assert.NotEmpty(t, d.Path)
		})
	}
}

func TestBuild_SelfNamedAsParentCreatesNoScope(t *testing.T) {
	res := analyze(t, prog(nil, nil, fn("void", "F_a", nil, fn("void", "F_a", nil))))
	require.False(t, res.OK)
	assert.Equal(t, diagnostic.SelfNamedAsParent, res.Diagnostics[0].Kind)
	assert.Len(t, res.Scopes, 2)
	assert.Empty(t, res.Root.Child("F_a").Children)
}

func TestBuild_SameNameInDifferentParents(t *testing.T) {
	res := analyze(t, prog(nil, nil,
		fn("void", "F_a", nil, fn("void", "F_x", nil)),
		fn("void", "F_b", nil, fn("void", "F_x", nil)),
	))
	assert.True(t, res.OK, "%v", res.Diagnostics)
	assert.NotNil(t, res.Root.Child("F_a").Child("F_x"))
	assert.NotNil(t, res.Root.Child("F_b").Child("F_x"))
}

func TestBuild_FirstErrorIsSticky(t *testing.T) {
	tree := prog(nil, build.Algo(
		build.Print(build.Ref("V_y")),
		build.Print(build.Ref("V_z")),
	), fn("void", "F_a", nil), fn("void", "F_a", nil))
	res := analyze(t, tree)
	assert.False(t, res.OK)
	require.Len(t, res.Diagnostics, 1)
	assert.Contains(t, res.Diagnostics[0].Message, "V_y")
	assert.Greater(t, res.Suppressed, 1)

	// the walk still completes
	assert.NotNil(t, res.Root.Child("F_a"))
	assert.Equal(t, 6, res.Symbols.Len())
}

func TestBuild_Malformed(t *testing.T) {
	tests := []struct {
		name string
		tree func() *ast.Tree
		msg  string
	}{
		{"root not PROG", func() *ast.Tree {
			return ast.Build(build.Algo(build.Halt()))
		}, "tree root is ALGO, want PROG"},
		{"empty VNAME", func() *ast.Tree {
			globals := ast.New(ast.GlobVars, ast.New(ast.VTyp, ast.Leaf("num")), ast.New(ast.VName), ast.Leaf(","), build.GlobVars())
			return ast.Build(build.Prog(globals, build.Algo(), nil))
		}, "declaration has no variable name"},
		{"bad VTYP", func() *ast.Tree {
			return prog([]build.VarDecl{build.Var("bool", "V_x")}, nil)
		}, `invalid variable type "bool"`},
		{"bad FTYP", func() *ast.Tree {
			return prog(nil, nil, fn("text", "F_a", nil))
		}, `invalid return type "text"`},
		{"call without name", func() *ast.Tree {
			c := ast.New(ast.Call, ast.Leaf("("), build.Num("1"), build.Num("2"), build.Num("3"), ast.Leaf(")"))
			return prog(nil, build.Algo(build.CallStmt(c)))
		}, "call has no function name"},
		{"two parameters", func() *ast.Tree {
			return prog(nil, nil, twoParams())
		}, "function F_a has 2 parameters, want 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := analyze(t, tt.tree())
			assert.False(t, res.OK)
			require.NotEmpty(t, res.Diagnostics)
			assert.Equal(t, diagnostic.MalformedNode, res.Diagnostics[0].Kind)
			assert.Contains(t, res.Diagnostics[0].Message, tt.msg)
		})
	}
}

// twoParams declares F_a with only V_a and V_b in its header.
func twoParams() *ast.Node {
	decl := fn("num", "F_a", nil)
	header := decl.Child(ast.Header)
	header.Children = append(header.Children[:6], header.Children[8:]...)
	return decl
}

func TestBuild_ShortHeaderLeavesLocals(t *testing.T) {
	res := analyze(t, prog(nil, nil, twoParams()))
	assert.False(t, res.OK)
	scope := res.Root.Child("F_a")
	require.NotNil(t, scope)
	f := res.Functions.Resolve(res.Root, "F_a")
	require.NotNil(t, f)
	assert.Len(t, f.Params, 2)
	local := res.Symbols.LookupLocal(scope, "V_d")
	require.NotNil(t, local)
	assert.Equal(t, SymLocal, local.Kind)
	text := res.Symbols.LookupLocal(scope, "V_f")
	require.NotNil(t, text)
	assert.Equal(t, types.Text, text.Type)
}

func TestBuild_RecordsCalls(t *testing.T) {
	tree := prog(nil,
		build.Algo(call("F_a")),
		fn("void", "F_a", build.Algo(call("F_b"), call("F_a")), fn("void", "F_b", nil)),
	)
	res := analyze(t, tree)
	require.True(t, res.OK, "%v", res.Diagnostics)
	require.Len(t, res.Calls, 3)
	assert.Equal(t, "F_a", res.Calls[0].Callee)
	assert.Equal(t, "main", res.Calls[0].Scope.Name)
	assert.Equal(t, "F_b", res.Calls[1].Callee)
	assert.Equal(t, "F_a", res.Calls[1].Scope.Name)
	assert.Equal(t, ast.FName, res.Calls[1].Node.Kind)
	// the call is not mistaken for a declaration
	assert.Len(t, res.Scopes, 3)
}

func snapshot(res *Result) []string {
	var out []string
	for _, s := range res.Scopes {
		parent := -1
		if s.Parent != nil {
			parent = int(s.Parent.ID)
		}
		out = append(out, fmt.Sprintf("scope %d %s parent=%d children=%d", s.ID, s.Path(), parent, len(s.Children)))
	}
	for _, sym := range res.Symbols.Entries() {
		out = append(out, fmt.Sprintf("symbol %+v %s %s", sym.Key, sym.Type, sym.Kind))
	}
	for _, f := range res.Functions.Entries() {
		out = append(out, fmt.Sprintf("function %s %s scope=%d params=%d", f.Name, f.Return, f.Scope.ID, len(f.Params)))
	}
	for _, c := range res.Calls {
		out = append(out, fmt.Sprintf("call %s from %d at %d", c.Callee, c.Scope.ID, c.Node.ID))
	}
	return out
}

func TestBuild_Idempotent(t *testing.T) {
	tree := prog(
		[]build.VarDecl{build.Var("num", "V_g")},
		build.Algo(call("F_a")),
		fn("num", "F_a", build.Algo(call("F_b")), fn("void", "F_b", nil), fn("void", "F_c", nil)),
		fn("void", "F_d", nil),
	)
	first := analyze(t, tree)
	second := analyze(t, tree)
	assert.Equal(t, first.OK, second.OK)
	assert.Equal(t, snapshot(first), snapshot(second))
	assert.Equal(t, first.Diagnostics, second.Diagnostics)
}

func TestBuild_NilConfig(t *testing.T) {
	res := Build(prog(nil, nil), nil)
	assert.True(t, res.OK)
}

// --- Call validation ---

func TestValidateCalls(t *testing.T) {
	tests := []struct {
		name  string
		tree  func() *ast.Tree
		kinds []diagnostic.Kind
	}{
		{
			name: "main calls child",
			tree: func() *ast.Tree {
				return prog(nil, build.Algo(call("F_a")), fn("void", "F_a", nil))
			},
		},
		{
			name: "call precedes declaration",
			tree: func() *ast.Tree {
				return prog(nil, nil, fn("void", "F_a", build.Algo(call("F_b")), fn("void", "F_b", nil)))
			},
		},
		{
			name: "function calls itself",
			tree: func() *ast.Tree {
				return prog(nil, nil, fn("void", "F_a", build.Algo(call("F_a"))))
			},
		},
		{
			name: "main calls itself",
			tree: func() *ast.Tree {
				return prog(nil, build.Algo(call("main")))
			},
			kinds: []diagnostic.Kind{diagnostic.RecursiveMainForbidden},
		},
		{
			name: "grandchild",
			tree: func() *ast.Tree {
				return prog(nil, build.Algo(call("F_b")), fn("void", "F_a", nil, fn("void", "F_b", nil)))
			},
			kinds: []diagnostic.Kind{diagnostic.UnreachableFunction},
		},
		{
			name: "parent",
			tree: func() *ast.Tree {
				return prog(nil, nil, fn("void", "F_a", nil, fn("void", "F_b", build.Algo(call("F_a")))))
			},
			kinds: []diagnostic.Kind{diagnostic.UnreachableFunction},
		},
		{
			name: "sibling",
			tree: func() *ast.Tree {
				return prog(nil, nil, fn("void", "F_a", build.Algo(call("F_d"))), fn("void", "F_d", nil))
			},
			kinds: []diagnostic.Kind{diagnostic.UnreachableFunction},
		},
		{
			name: "function calls main",
			tree: func() *ast.Tree {
				return prog(nil, nil, fn("void", "F_a", build.Algo(call("main"))))
			},
			kinds: []diagnostic.Kind{diagnostic.UnreachableFunction},
		},
		{
			name: "every failure reported",
			tree: func() *ast.Tree {
				return prog(nil, build.Algo(call("main"), call("F_x"), call("F_a")), fn("void", "F_a", nil))
			},
			kinds: []diagnostic.Kind{diagnostic.RecursiveMainForbidden, diagnostic.UnreachableFunction},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := analyze(t, tt.tree())
			require.True(t, res.OK, "%v", res.Diagnostics)
			diags := ValidateCalls(res)
			assert.Equal(t, tt.kinds, kinds(diags))
			for _, d := range diags {
				assert.Equal(t, ast.FName.String(), d.Path[len(d.Path)-len("FNAME"):])
			}
		})
	}
}

func TestValidateCalls_Message(t *testing.T) {
	res := analyze(t, prog(nil, nil, fn("void", "F_a", build.Algo(call("F_d"))), fn("void", "F_d", nil)))
	diags := ValidateCalls(res)
	require.Len(t, diags, 1)
	assert.Equal(t, "F_d is not callable from F_a", diags[0].Message)
	assert.Equal(t, int(res.Calls[0].Node.ID), diags[0].Node)
	assert.NotEmpty(t, diags[0].Notes)
}

// --- Tables ---

func TestSymbolTable_Insert(t *testing.T) {
	root := &Scope{ID: RootID, Name: RootName}
	child := &Scope{ID: 1, Name: "F_a", Parent: root}
	root.Children = []*Scope{child}

	tab := NewSymbolTable()
	x := &Symbol{Name: "V_x", Type: types.Numeric, Scope: root, Node: &ast.Node{ID: 4}}
	require.NoError(t, tab.Insert(x))
	err := tab.Insert(&Symbol{Name: "V_x", Type: types.Text, Scope: root, Node: &ast.Node{ID: 9}})
	assert.True(t, errors.Is(err, ErrDuplicate))
	assert.Contains(t, err.Error(), "at node 4")

	shadow := &Symbol{Name: "V_x", Type: types.Text, Scope: child, Node: &ast.Node{ID: 12}}
	require.NoError(t, tab.Insert(shadow))
	assert.Same(t, shadow, tab.Resolve(child, "V_x"))
	assert.Same(t, x, tab.Resolve(root, "V_x"))
	assert.Same(t, x, tab.Get(SymbolKey{Scope: RootID, Name: "V_x", Node: 4}))
	assert.Nil(t, tab.Get(SymbolKey{Scope: RootID, Name: "V_x", Node: 9}))
	assert.Equal(t, 2, tab.Len())
}

func TestFunctionTable_Resolve(t *testing.T) {
	res := analyze(t, prog(nil, nil, fn("num", "F_a", nil, fn("void", "F_b", nil)), fn("void", "F_c", nil)))
	require.True(t, res.OK)
	fa := res.Root.Child("F_a")

	assert.Equal(t, "F_a", res.Functions.Resolve(fa, "F_a").Name)
	assert.Equal(t, "F_b", res.Functions.Resolve(fa, "F_b").Name)
	assert.Nil(t, res.Functions.Resolve(fa, "F_c"))
	assert.Nil(t, res.Functions.Resolve(res.Root, "F_b"))
	assert.True(t, res.Functions.Resolve(res.Root, "main").IsMain())
}

func TestSymbolKind_String(t *testing.T) {
	assert.Equal(t, "parameter", SymParameter.String())
	assert.Equal(t, "unknown", SymbolKind(7).String())
}
