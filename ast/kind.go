// Copyright © 2024 The ELPS authors

package ast

// Kind identifies the grammar production a node was built from. Leaves of
// the tree (keywords, names, literals and punctuation) are all Terminal.
type Kind int

const (
	Terminal Kind = iota
	Prog
	GlobVars
	VTyp
	VName
	Algo
	Instruc
	Command
	Atomic
	Const
	Assign
	Call
	Branch
	Term
	Op
	Arg
	Cond
	Simple
	Composit
	Unop
	Binop
	FName
	Functions
	Decl
	Header
	FTyp
	Body
	Prolog
	Epilog
	LocVars
	SubFuncs

	numKinds
)

var kindLabels = [numKinds]string{
	Terminal:  "TERMINAL",
	Prog:      "PROG",
	GlobVars:  "GLOBVARS",
	VTyp:      "VTYP",
	VName:     "VNAME",
	Algo:      "ALGO",
	Instruc:   "INSTRUC",
	Command:   "COMMAND",
	Atomic:    "ATOMIC",
	Const:     "CONST",
	Assign:    "ASSIGN",
	Call:      "CALL",
	Branch:    "BRANCH",
	Term:      "TERM",
	Op:        "OP",
	Arg:       "ARG",
	Cond:      "COND",
	Simple:    "SIMPLE",
	Composit:  "COMPOSIT",
	Unop:      "UNOP",
	Binop:     "BINOP",
	FName:     "FNAME",
	Functions: "FUNCTIONS",
	Decl:      "DECL",
	Header:    "HEADER",
	FTyp:      "FTYP",
	Body:      "BODY",
	Prolog:    "PROLOG",
	Epilog:    "EPILOG",
	LocVars:   "LOCVARS",
	SubFuncs:  "SUBFUNCS",
}

var labelKinds = func() map[string]Kind {
	m := make(map[string]Kind, numKinds)
	for k := Prog; k < numKinds; k++ {
		m[kindLabels[k]] = k
	}
	return m
}()

// String returns the wire label of the production (e.g. "VNAME").
func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return "UNKNOWN"
	}
	return kindLabels[k]
}

// KindOf maps a wire label to its production. Labels that do not name a
// production are terminals.
func KindOf(label string) Kind {
	if k, ok := labelKinds[label]; ok {
		return k
	}
	return Terminal
}

// Kinds returns every non-terminal production in declaration order.
func Kinds() []Kind {
	ks := make([]Kind, 0, numKinds-1)
	for k := Prog; k < numKinds; k++ {
		ks = append(ks, k)
	}
	return ks
}
