// Copyright © 2024 The ELPS authors

// Package build assembles syntax trees production by production.
//
// The constructors emit the same shapes as the reference parser,
// punctuation terminals included, so programs can be assembled in code
// without going through a reader.
package build

import "github.com/luthersystems/splcheck/ast"

// VarDecl is a typed variable name as it appears in GLOBVARS and LOCVARS.
type VarDecl struct {
	Type string // "num" or "text"
	Name string
}

// Var is shorthand for a VarDecl.
func Var(typ, name string) VarDecl {
	return VarDecl{Type: typ, Name: name}
}

// Prog builds PROG ::= main GLOBVARS ALGO FUNCTIONS.
func Prog(globals, algo, functions *ast.Node) *ast.Node {
	if globals == nil {
		globals = GlobVars()
	}
	if functions == nil {
		functions = Functions()
	}
	return ast.New(ast.Prog, ast.Leaf("main"), globals, algo, functions)
}

// GlobVars builds the right-recursive GLOBVARS chain.
func GlobVars(decls ...VarDecl) *ast.Node {
	if len(decls) == 0 {
		return ast.New(ast.GlobVars)
	}
	d := decls[0]
	return ast.New(ast.GlobVars, vtyp(d.Type), vname(d.Name), ast.Leaf(","), GlobVars(decls[1:]...))
}

// Algo builds ALGO ::= begin INSTRUC end.
func Algo(commands ...*ast.Node) *ast.Node {
	return ast.New(ast.Algo, ast.Leaf("begin"), instruc(commands), ast.Leaf("end"))
}

func instruc(commands []*ast.Node) *ast.Node {
	if len(commands) == 0 {
		return ast.New(ast.Instruc)
	}
	n := ast.New(ast.Instruc, commands[0], ast.Leaf(";"))
	if len(commands) > 1 {
		n.Children = append(n.Children, instruc(commands[1:]))
	}
	return n
}

// Skip builds COMMAND ::= skip.
func Skip() *ast.Node { return ast.New(ast.Command, ast.Leaf("skip")) }

// Halt builds COMMAND ::= halt.
func Halt() *ast.Node { return ast.New(ast.Command, ast.Leaf("halt")) }

// Print builds COMMAND ::= print ATOMIC.
func Print(atomic *ast.Node) *ast.Node { return ast.New(ast.Command, ast.Leaf("print"), atomic) }

// Return builds COMMAND ::= return ATOMIC.
func Return(atomic *ast.Node) *ast.Node { return ast.New(ast.Command, ast.Leaf("return"), atomic) }

// Input builds COMMAND ::= ASSIGN(VNAME < input).
func Input(name string) *ast.Node {
	return ast.New(ast.Command, ast.New(ast.Assign, vname(name), ast.Leaf("< input")))
}

// Assign builds COMMAND ::= ASSIGN(VNAME = TERM).
func Assign(name string, term *ast.Node) *ast.Node {
	return ast.New(ast.Command, ast.New(ast.Assign, vname(name), ast.Leaf("="), term))
}

// CallStmt wraps a CALL as a statement.
func CallStmt(call *ast.Node) *ast.Node { return ast.New(ast.Command, call) }

// Branch builds COMMAND ::= BRANCH(if COND then ALGO else ALGO).
func Branch(cond, then, els *ast.Node) *ast.Node {
	return ast.New(ast.Command, ast.New(ast.Branch, ast.Leaf("if"), cond, ast.Leaf("then"), then, ast.Leaf("else"), els))
}

// Ref builds ATOMIC ::= VNAME.
func Ref(name string) *ast.Node { return ast.New(ast.Atomic, vname(name)) }

// Num builds a numeric ATOMIC constant from its literal text.
func Num(lit string) *ast.Node { return ast.New(ast.Atomic, ast.New(ast.Const, ast.Leaf(lit))) }

// Text builds a text ATOMIC constant; word is given without quotes.
func Text(word string) *ast.Node { return ast.New(ast.Atomic, ast.New(ast.Const, ast.Leaf(`"`+word+`"`))) }

// TermOf builds TERM ::= ATOMIC | CALL | OP.
func TermOf(x *ast.Node) *ast.Node { return ast.New(ast.Term, x) }

// Unary builds OP ::= UNOP ( ARG ).
func Unary(op string, arg *ast.Node) *ast.Node {
	return ast.New(ast.Op, ast.New(ast.Unop, ast.Leaf(op)), ast.Leaf("("), argOf(arg), ast.Leaf(")"))
}

// Binary builds OP ::= BINOP ( ARG , ARG ).
func Binary(op string, a, b *ast.Node) *ast.Node {
	return ast.New(ast.Op, ast.New(ast.Binop, ast.Leaf(op)), ast.Leaf("("), argOf(a), ast.Leaf(","), argOf(b), ast.Leaf(")"))
}

// ArgOf builds ARG ::= ATOMIC | OP.
func ArgOf(x *ast.Node) *ast.Node { return ast.New(ast.Arg, x) }

func argOf(x *ast.Node) *ast.Node {
	if x != nil && x.Kind == ast.Arg {
		return x
	}
	return ArgOf(x)
}

// Call builds CALL ::= FNAME ( ATOMIC , ATOMIC , ATOMIC ).
func Call(fname string, a, b, c *ast.Node) *ast.Node {
	return ast.New(ast.Call, fnameNode(fname), ast.Leaf("("), a, ast.Leaf(","), b, ast.Leaf(","), c, ast.Leaf(")"))
}

// Simple builds SIMPLE ::= BINOP ( ATOMIC , ATOMIC ).
func Simple(op string, a, b *ast.Node) *ast.Node {
	return ast.New(ast.Simple, ast.New(ast.Binop, ast.Leaf(op)), ast.Leaf("("), a, ast.Leaf(","), b, ast.Leaf(")"))
}

// CompositeBinary builds COMPOSIT ::= BINOP ( SIMPLE , SIMPLE ).
func CompositeBinary(op string, a, b *ast.Node) *ast.Node {
	return ast.New(ast.Composit, ast.New(ast.Binop, ast.Leaf(op)), ast.Leaf("("), a, ast.Leaf(","), b, ast.Leaf(")"))
}

// CompositeUnary builds COMPOSIT ::= UNOP ( SIMPLE ).
func CompositeUnary(op string, s *ast.Node) *ast.Node {
	return ast.New(ast.Composit, ast.New(ast.Unop, ast.Leaf(op)), ast.Leaf("("), s, ast.Leaf(")"))
}

// CondOf builds COND ::= SIMPLE | COMPOSIT.
func CondOf(x *ast.Node) *ast.Node { return ast.New(ast.Cond, x) }

// Functions builds the right-recursive FUNCTIONS chain from DECL nodes.
func Functions(decls ...*ast.Node) *ast.Node {
	if len(decls) == 0 {
		return ast.New(ast.Functions)
	}
	return ast.New(ast.Functions, decls[0], Functions(decls[1:]...))
}

// Func describes a function declaration for Decl.
type Func struct {
	Return string // "num" or "void"
	Name   string
	Params [3]string
	Locals [3]VarDecl
	Algo   *ast.Node
	Sub    []*ast.Node // nested DECL nodes
}

// Decl builds DECL ::= HEADER BODY.
func Decl(f Func) *ast.Node {
	header := ast.New(ast.Header,
		ast.New(ast.FTyp, ast.Leaf(f.Return)), fnameNode(f.Name), ast.Leaf("("),
		vname(f.Params[0]), ast.Leaf(","),
		vname(f.Params[1]), ast.Leaf(","),
		vname(f.Params[2]), ast.Leaf(")"))
	locals := ast.New(ast.LocVars)
	for _, d := range f.Locals {
		locals.Children = append(locals.Children, vtyp(d.Type), vname(d.Name), ast.Leaf(","))
	}
	algo := f.Algo
	if algo == nil {
		algo = Algo()
	}
	body := ast.New(ast.Body,
		ast.New(ast.Prolog, ast.Leaf("{")),
		locals,
		algo,
		ast.New(ast.Epilog, ast.Leaf("}")),
		ast.New(ast.SubFuncs, Functions(f.Sub...)),
		ast.Leaf("end"))
	return ast.New(ast.Decl, header, body)
}

func vtyp(t string) *ast.Node { return ast.New(ast.VTyp, ast.Leaf(t)) }
func vname(n string) *ast.Node { return ast.New(ast.VName, ast.Leaf(n)) }
func fnameNode(n string) *ast.Node { return ast.New(ast.FName, ast.Leaf(n)) }
