// Copyright © 2024 The ELPS authors

package astutil

import (
	"github.com/luthersystems/splcheck/ast"
	"github.com/luthersystems/splcheck/diagnostic"
)

// Errorf returns an error diagnostic anchored at n. The node path is always
// attached; a source span is attached when n or one of its descendants
// carries a position.
func Errorf(kind diagnostic.Kind, n *ast.Node, format string, args ...interface{}) diagnostic.Diagnostic {
	d := diagnostic.Errorf(kind, int(n.ID), format, args...)
	d.Path = Path(n)
	if src := SourceOf(n); src.Pos.IsValid() {
		d.Spans = []diagnostic.Span{{
			File: src.Pos.File,
			Line: src.Pos.Line,
			Col:  src.Pos.Col,
		}}
	}
	return d
}
