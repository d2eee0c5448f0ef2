// Copyright © 2024 The ELPS authors

package typecheck

import (
	"regexp"

	"github.com/luthersystems/splcheck/analysis"
	"github.com/luthersystems/splcheck/ast"
	"github.com/luthersystems/splcheck/diagnostic"
	"github.com/luthersystems/splcheck/types"
)

var (
	numericLit = regexp.MustCompile(`^(0|0\.[0-9]*[1-9]|-0\.[0-9]*[1-9]|[1-9][0-9]*|-?[1-9][0-9]*(\.[0-9]*[1-9])?)$`)
	textLit    = regexp.MustCompile(`^"[A-Z][a-z]{0,7}"$`)
)

// unopDomain returns the operand and result type of a unary operator.
func unopDomain(op string) types.Type {
	switch op {
	case "not":
		return types.Boolean
	case "sqrt":
		return types.Numeric
	}
	return types.Undefined
}

// binopDomain returns Boolean for logical operators, Comparison for
// relational ones and Numeric for arithmetic.
func binopDomain(op string) types.Type {
	switch op {
	case "or", "and":
		return types.Boolean
	case "eq", "grt":
		return types.Comparison
	case "add", "sub", "mul", "div":
		return types.Numeric
	}
	return types.Undefined
}

// operandType is the type both operands of a binary operator in domain d
// must have.
func operandType(d types.Type) types.Type {
	if d == types.Comparison {
		return types.Numeric
	}
	return d
}

// resultType is what a binary operator in domain d produces.
func resultType(d types.Type) types.Type {
	if d == types.Comparison {
		return types.Boolean
	}
	return d
}

func (c *checker) constant(n *ast.Node) types.Type {
	lit := n.Word()
	switch {
	case lit == "":
		return c.malformed(n, "CONST has no literal")
	case numericLit.MatchString(lit):
		return c.record(n, types.Numeric)
	case textLit.MatchString(lit):
		return c.record(n, types.Text)
	}
	return c.mismatch(n, "invalid constant %s", lit)
}

// vname types a variable reference, resolving it through the ancestors of
// the current scope.
func (c *checker) vname(n *ast.Node) types.Type {
	name := n.Word()
	sym := c.sem.Symbols.Resolve(c.current, name)
	if sym == nil {
		return c.fail(diagnostic.UnknownSymbol, n, "unknown variable %s in scope %s", name, c.current.Name)
	}
	return c.record(n, sym.Type)
}

func (c *checker) atomic(n *ast.Node) types.Type {
	var t types.Type
	switch {
	case n.Child(ast.VName) != nil:
		t = c.vname(n.Child(ast.VName))
	case n.Child(ast.Const) != nil:
		t = c.constant(n.Child(ast.Const))
	default:
		return c.malformed(n, "ATOMIC has neither VNAME nor CONST")
	}
	return c.record(n, t)
}

func (c *checker) term(n *ast.Node) types.Type {
	var t types.Type
	switch {
	case n.Child(ast.Atomic) != nil:
		t = c.atomic(n.Child(ast.Atomic))
	case n.Child(ast.Call) != nil:
		t = c.callExpr(n.Child(ast.Call))
	case n.Child(ast.Op) != nil:
		t = c.op(n.Child(ast.Op))
	default:
		return c.malformed(n, "TERM has no ATOMIC, CALL or OP")
	}
	return c.record(n, t)
}

func (c *checker) arg(n *ast.Node) types.Type {
	var t types.Type
	switch {
	case n.Child(ast.Atomic) != nil:
		t = c.atomic(n.Child(ast.Atomic))
	case n.Child(ast.Op) != nil:
		t = c.op(n.Child(ast.Op))
	default:
		return c.malformed(n, "ARG has neither ATOMIC nor OP")
	}
	return c.record(n, t)
}

func (c *checker) op(n *ast.Node) types.Type {
	args := n.ChildrenOf(ast.Arg)
	var t types.Type
	switch {
	case n.Child(ast.Unop) != nil:
		if len(args) != 1 {
			return c.malformed(n, "unary operator has %d arguments, want 1", len(args))
		}
		t = c.unop(n.Child(ast.Unop), args[0])
	case n.Child(ast.Binop) != nil:
		if len(args) != 2 {
			return c.malformed(n, "binary operator has %d arguments, want 2", len(args))
		}
		t = c.binop(n.Child(ast.Binop), args[0], args[1])
	default:
		return c.malformed(n, "OP has neither UNOP nor BINOP")
	}
	return c.record(n, t)
}

func (c *checker) unop(op, arg *ast.Node) types.Type {
	d := unopDomain(op.Word())
	if d == types.Undefined {
		return c.malformed(op, "unknown unary operator %q", op.Word())
	}
	c.record(op, d)
	t := c.arg(arg)
	if t == types.Undefined {
		return t
	}
	if t != d {
		return c.mismatch(arg, "%s applies to %s, got %s", op.Word(), d, t)
	}
	return d
}

func (c *checker) binop(op, a, b *ast.Node) types.Type {
	d := binopDomain(op.Word())
	if d == types.Undefined {
		return c.malformed(op, "unknown binary operator %q", op.Word())
	}
	c.record(op, d)
	want := operandType(d)
	for i, arg := range []*ast.Node{a, b} {
		t := c.arg(arg)
		if t == types.Undefined {
			return t
		}
		if t != want {
			return c.mismatch(arg, "operand %d of %s must be %s, got %s", i+1, op.Word(), want, t)
		}
	}
	return resultType(d)
}

// callExpr types a call against the callee's registered signature without
// entering the callee's scope.
func (c *checker) callExpr(n *ast.Node) types.Type {
	fname := c.require(n, ast.FName)
	if fname == nil {
		return types.Undefined
	}
	name := fname.Word()
	fn := c.sem.Functions.Resolve(c.current, name)
	if fn == nil {
		return c.fail(diagnostic.UnknownSymbol, fname, "unknown function %s in scope %s", name, c.current.Name)
	}
	args := n.ChildrenOf(ast.Atomic)
	if len(args) != analysis.Arity {
		return c.malformed(n, "call to %s has %d arguments, want %d", name, len(args), analysis.Arity)
	}
	for i, a := range args {
		t := c.atomic(a)
		if t == types.Undefined {
			return t
		}
		if want := paramType(fn, i); t != want {
			return c.mismatch(a, "argument %d of %s must be %s, got %s", i+1, name, want, t)
		}
	}
	c.record(fname, fn.Return)
	return c.record(n, fn.Return)
}

func paramType(fn *analysis.Function, i int) types.Type {
	if i < len(fn.Params) && fn.Params[i] != nil {
		return fn.Params[i].Type
	}
	return types.Numeric
}

func (c *checker) cond(n *ast.Node) types.Type {
	var t types.Type
	switch {
	case n.Child(ast.Simple) != nil:
		t = c.simple(n.Child(ast.Simple))
	case n.Child(ast.Composit) != nil:
		t = c.composite(n.Child(ast.Composit))
	default:
		return c.malformed(n, "COND has neither SIMPLE nor COMPOSIT")
	}
	return c.record(n, t)
}

func (c *checker) simple(n *ast.Node) types.Type {
	op := c.require(n, ast.Binop)
	if op == nil {
		return types.Undefined
	}
	d := binopDomain(op.Word())
	switch d {
	case types.Undefined:
		return c.malformed(op, "unknown binary operator %q", op.Word())
	case types.Numeric:
		return c.mismatch(op, "%s does not produce bool and cannot form a condition", op.Word())
	}
	c.record(op, d)
	args := n.ChildrenOf(ast.Atomic)
	if len(args) != 2 {
		return c.malformed(n, "condition has %d operands, want 2", len(args))
	}
	want := operandType(d)
	for i, a := range args {
		t := c.atomic(a)
		if t == types.Undefined {
			return t
		}
		if t != want {
			return c.mismatch(a, "operand %d of %s must be %s, got %s", i+1, op.Word(), want, t)
		}
	}
	return c.record(n, types.Boolean)
}

// composite types and(...), or(...) and not(...) conditions. Operands must
// be SIMPLE conditions; nesting composites or operators is rejected.
func (c *checker) composite(n *ast.Node) types.Type {
	var (
		op    *ast.Node
		arity int
		d     types.Type
	)
	switch {
	case n.Child(ast.Binop) != nil:
		op, arity = n.Child(ast.Binop), 2
		d = binopDomain(op.Word())
	case n.Child(ast.Unop) != nil:
		op, arity = n.Child(ast.Unop), 1
		d = unopDomain(op.Word())
	default:
		return c.malformed(n, "COMPOSIT has neither BINOP nor UNOP")
	}
	if d == types.Undefined {
		return c.malformed(op, "unknown operator %q", op.Word())
	}
	if d != types.Boolean {
		return c.mismatch(op, "%s is not a logical operator", op.Word())
	}
	c.record(op, d)
	var operands []*ast.Node
	for _, child := range n.Nonterminals() {
		if child != op {
			operands = append(operands, child)
		}
	}
	if len(operands) != arity {
		return c.malformed(n, "%s has %d operands, want %d", op.Word(), len(operands), arity)
	}
	for i, s := range operands {
		if s.Kind != ast.Simple {
			return c.mismatch(s, "operand %d of %s must be a simple condition, got %s", i+1, op.Word(), s.Label())
		}
		t := c.simple(s)
		if t == types.Undefined {
			return t
		}
		if t != types.Boolean {
			return c.mismatch(s, "operand %d of %s must be bool, got %s", i+1, op.Word(), t)
		}
	}
	return c.record(n, types.Boolean)
}
