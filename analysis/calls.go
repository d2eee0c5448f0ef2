// Copyright © 2024 The ELPS authors

package analysis

import (
	"github.com/luthersystems/splcheck/astutil"
	"github.com/luthersystems/splcheck/diagnostic"
)

// ValidateCalls checks every recorded call site against the finished scope
// tree. A function may call itself or one of its immediate subfunctions;
// main may not call itself. Every failing call is reported.
func ValidateCalls(res *Result) []diagnostic.Diagnostic {
	var diags []diagnostic.Diagnostic
	for _, call := range res.Calls {
		caller := call.Scope
		switch {
		case call.Callee == caller.Name && caller.IsRoot():
			diags = append(diags, astutil.Errorf(diagnostic.RecursiveMainForbidden, call.Node,
				"%s may not call itself", RootName))
		case call.Callee == caller.Name:
		case caller.Child(call.Callee) != nil:
		default:
			d := astutil.Errorf(diagnostic.UnreachableFunction, call.Node,
				"%s is not callable from %s", call.Callee, caller.Name)
			d.Notes = []string{"a function may only call itself or one of its immediate subfunctions"}
			diags = append(diags, d)
		}
	}
	return diags
}
