// Copyright © 2024 The ELPS authors

package typecheck

import (
	"github.com/luthersystems/splcheck/analysis"
	"github.com/luthersystems/splcheck/ast"
	"github.com/luthersystems/splcheck/diagnostic"
	"github.com/luthersystems/splcheck/types"
	"github.com/sirupsen/logrus"
)

// Words that mark an input assignment. Readers may deliver the arrow and
// the keyword as one token or as two.
const (
	inputToken   = "< input"
	inputKeyword = "input"
)

func (c *checker) prog(n *ast.Node) {
	if n.Kind != ast.Prog {
		c.malformed(n, "tree root is %s, want PROG", n.Label())
		return
	}
	if g := n.Child(ast.GlobVars); g != nil {
		c.globVars(g)
	}
	if algo := c.require(n, ast.Algo); algo != nil {
		c.algo(algo)
	}
	if fns := n.Child(ast.Functions); fns != nil {
		c.functions(fns)
	}
}

// globVars walks the right-recursive GLOBVARS chain.
func (c *checker) globVars(n *ast.Node) {
	for ; n != nil && !c.failed; n = n.Child(ast.GlobVars) {
		c.varDecls(n)
	}
}

func (c *checker) locVars(n *ast.Node) {
	c.varDecls(n)
}

// varDecls checks each VTYP VNAME pair directly under n against the
// declaration the scope builder recorded for it.
func (c *checker) varDecls(n *ast.Node) {
	typs := n.ChildrenOf(ast.VTyp)
	names := n.ChildrenOf(ast.VName)
	if len(typs) != len(names) {
		c.malformed(n, "%s has %d types for %d names", n.Label(), len(typs), len(names))
		return
	}
	for i := range names {
		if c.failed {
			return
		}
		c.varDecl(typs[i], names[i])
	}
}

func (c *checker) varDecl(vtyp, vname *ast.Node) {
	declared, ok := types.VarType(vtyp.Word())
	if !ok {
		c.malformed(vtyp, "invalid variable type %q (want num or text)", vtyp.Word())
		return
	}
	name := vname.Word()
	sym := c.sem.Symbols.Get(analysis.SymbolKey{Scope: c.current.ID, Name: name, Node: vname.ID})
	if sym == nil {
		c.fail(diagnostic.UnknownSymbol, vname, "variable %s has no entry in scope %s", name, c.current.Name)
		return
	}
	if sym.Type != declared {
		c.mismatch(vname, "%s is declared %s but recorded as %s", name, declared, sym.Type)
		return
	}
	c.record(vname, declared)
}

func (c *checker) algo(n *ast.Node) {
	if in := n.Child(ast.Instruc); in != nil {
		c.instruc(in)
	}
}

// instruc walks the right-recursive INSTRUC chain.
func (c *checker) instruc(n *ast.Node) {
	for ; n != nil && !c.failed; n = n.Child(ast.Instruc) {
		if cmd := n.Child(ast.Command); cmd != nil {
			c.command(cmd)
		}
	}
}

func (c *checker) command(n *ast.Node) {
	switch {
	case n.HasWord("skip"), n.HasWord("halt"):
		c.record(n, types.Void)
	case n.HasWord("print"):
		c.print(n)
	case n.HasWord("return"):
		c.ret(n)
	case n.Child(ast.Assign) != nil:
		c.assign(n.Child(ast.Assign))
	case n.Child(ast.Call) != nil:
		call := n.Child(ast.Call)
		t := c.callExpr(call)
		if t == types.Undefined {
			return
		}
		if t != types.Void {
			c.mismatch(call, "call to %s used as a statement returns %s, want void", call.Child(ast.FName).Word(), t)
			return
		}
		c.record(n, types.Void)
	case n.Child(ast.Branch) != nil:
		c.branch(n.Child(ast.Branch))
	default:
		c.malformed(n, "unrecognized command %q", n.Words())
	}
}

func (c *checker) print(n *ast.Node) {
	a := c.require(n, ast.Atomic)
	if a == nil {
		return
	}
	switch t := c.atomic(a); t {
	case types.Undefined:
	case types.Numeric, types.Text:
		c.record(n, types.Void)
	default:
		c.mismatch(a, "print expects num or text, got %s", t)
	}
}

// ret checks a return statement against the function whose scope the
// checker is in.
func (c *checker) ret(n *ast.Node) {
	a := c.require(n, ast.Atomic)
	if a == nil {
		return
	}
	t := c.atomic(a)
	if t == types.Undefined {
		return
	}
	fn := c.sem.Functions.ByScope(c.current.ID)
	if fn == nil {
		c.fail(diagnostic.UnknownSymbol, n, "scope %s has no function entry", c.current.Name)
		return
	}
	if t != fn.Return {
		c.mismatch(a, "%s returns %s, got %s", fn.Name, fn.Return, t)
		return
	}
	c.record(n, t)
}

func (c *checker) assign(n *ast.Node) {
	target := c.require(n, ast.VName)
	if target == nil {
		return
	}
	want := c.vname(target)
	if want == types.Undefined {
		return
	}
	if term := n.Child(ast.Term); term != nil {
		got := c.term(term)
		if got == types.Undefined {
			return
		}
		if got != want {
			c.mismatch(n, "cannot assign %s to %s of type %s", got, target.Word(), want)
			return
		}
		c.record(n, want)
		return
	}
	if n.HasWord(inputToken) || n.HasWord(inputKeyword) {
		if want != types.Numeric {
			c.mismatch(n, "input requires a num target, %s is %s", target.Word(), want)
			return
		}
		c.record(n, want)
		return
	}
	c.malformed(n, "assignment has neither a term nor input")
}

func (c *checker) branch(n *ast.Node) {
	cond := c.require(n, ast.Cond)
	if cond == nil {
		return
	}
	t := c.cond(cond)
	if t == types.Undefined {
		return
	}
	if t != types.Boolean {
		c.mismatch(cond, "branch condition is %s, want bool", t)
		return
	}
	arms := n.ChildrenOf(ast.Algo)
	if len(arms) != 2 {
		c.malformed(n, "branch has %d arms, want 2", len(arms))
		return
	}
	for _, arm := range arms {
		if c.failed {
			return
		}
		c.algo(arm)
	}
}

// functions walks the right-recursive FUNCTIONS chain.
func (c *checker) functions(n *ast.Node) {
	for ; n != nil && !c.failed; n = n.Child(ast.Functions) {
		if d := n.Child(ast.Decl); d != nil {
			c.decl(d)
		}
	}
}

// decl moves the cursor into the function's scope for its header and body
// and restores it afterwards.
func (c *checker) decl(n *ast.Node) {
	header := c.require(n, ast.Header)
	if header == nil {
		return
	}
	fname := c.require(header, ast.FName)
	if fname == nil {
		return
	}
	fn := c.sem.Functions.ByNode(fname.ID)
	if fn == nil {
		c.fail(diagnostic.UnknownSymbol, fname, "function %s has no scope", fname.Word())
		return
	}
	saved := c.current
	c.current = fn.Scope
	defer func() { c.current = saved }()
	c.log.WithFields(logrus.Fields{"scope": fn.Scope.Path()}).Debug("checking function")

	c.header(header, fn)
	if c.failed {
		return
	}
	if body := c.require(n, ast.Body); body != nil {
		c.body(body)
	}
}

func (c *checker) header(n *ast.Node, fn *analysis.Function) {
	ftyp := c.require(n, ast.FTyp)
	if ftyp == nil {
		return
	}
	declared, ok := types.ReturnType(ftyp.Word())
	if !ok {
		c.malformed(ftyp, "invalid return type %q (want num or void)", ftyp.Word())
		return
	}
	if declared != fn.Return {
		c.mismatch(ftyp, "%s is declared %s but registered as %s", fn.Name, declared, fn.Return)
		return
	}
	params := n.ChildrenOf(ast.VName)
	if len(params) != analysis.Arity {
		c.malformed(n, "%s has %d parameters, want %d", fn.Name, len(params), analysis.Arity)
		return
	}
	for _, p := range params {
		sym := c.sem.Symbols.LookupLocal(c.current, p.Word())
		if sym == nil {
			c.fail(diagnostic.UnknownSymbol, p, "parameter %s has no entry in scope %s", p.Word(), c.current.Name)
			return
		}
		if sym.Type != types.Numeric {
			c.mismatch(p, "parameter %s is %s, want num", p.Word(), sym.Type)
			return
		}
		c.record(p, sym.Type)
	}
	c.record(ftyp, declared)
}

func (c *checker) body(n *ast.Node) {
	if lv := n.Child(ast.LocVars); lv != nil {
		c.locVars(lv)
	}
	if c.failed {
		return
	}
	if algo := c.require(n, ast.Algo); algo != nil {
		c.algo(algo)
	}
	if c.failed {
		return
	}
	if sub := n.Child(ast.SubFuncs); sub != nil {
		if fns := sub.Child(ast.Functions); fns != nil {
			c.functions(fns)
		}
	}
}
