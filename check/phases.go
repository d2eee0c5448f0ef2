// Copyright © 2024 The ELPS authors

package check

import (
	"errors"

	"github.com/luthersystems/splcheck/analysis"
	"github.com/luthersystems/splcheck/typecheck"
)

// errNoSemantics is returned by phases that need the scope tree when the
// scope phase has not run.
var errNoSemantics = errors.New("scope tree not built; run the scope phase first")

// ScopePhase builds the scope tree and the Symbol and Function tables.
var ScopePhase = &Phase{
	Name: "scope",
	Doc: `Build the scope tree and symbol tables.

Reports duplicate declarations, undeclared variables and function names that
repeat their parent's or a sibling's name. Only the first violation is
reported.`,
	Run: func(pass *Pass) error {
		res := analysis.Build(pass.Tree, &analysis.Config{Logger: pass.Logger})
		pass.Semantics = res
		pass.Report(res.Diagnostics...)
		if res.Suppressed > 0 {
			pass.Logger.WithField("suppressed", res.Suppressed).Debug("further scope violations suppressed")
		}
		return nil
	},
}

// CallsPhase checks every recorded call against the finished scope tree.
var CallsPhase = &Phase{
	Name: "calls",
	Doc: `Check that every call names a reachable function.

A function may call itself or one of its immediate subfunctions. The main
program may not call itself. Every failing call is reported.`,
	Run: func(pass *Pass) error {
		if pass.Semantics == nil {
			return errNoSemantics
		}
		pass.Report(analysis.ValidateCalls(pass.Semantics)...)
		return nil
	},
}

// TypesPhase infers and checks the type of every expression, statement and
// declaration.
var TypesPhase = &Phase{
	Name: "types",
	Doc: `Type check the program.

Stops at the first type error.`,
	Run: func(pass *Pass) error {
		if pass.Semantics == nil {
			return errNoSemantics
		}
		res := typecheck.Check(pass.Tree, pass.Semantics, &typecheck.Config{Logger: pass.Logger})
		pass.Types = res
		pass.Report(res.Diagnostics...)
		return nil
	},
}

// DefaultPhases returns the scope, calls and types phases in run order.
func DefaultPhases() []*Phase {
	return []*Phase{
		ScopePhase,
		CallsPhase,
		TypesPhase,
	}
}

// PhaseNamed returns the default phase with the given name, or nil.
func PhaseNamed(name string) *Phase {
	for _, ph := range DefaultPhases() {
		if ph.Name == name {
			return ph
		}
	}
	return nil
}
