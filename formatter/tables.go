// Copyright © 2024 The ELPS authors

package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/luthersystems/splcheck/analysis"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/padding"
)

// WriteTables writes the scope tree followed by the symbol and function
// tables of res.
func WriteTables(w io.Writer, res *analysis.Result) error {
	var sb strings.Builder
	sb.WriteString("scopes:\n")
	sb.WriteString(indent.String(ScopeTree(res.Root), 2))
	sb.WriteString("\nsymbols:\n")
	sb.WriteString(indent.String(SymbolTable(res.Symbols), 2))
	sb.WriteString("\nfunctions:\n")
	sb.WriteString(indent.String(FunctionTable(res.Functions), 2))
	_, err := io.WriteString(w, sb.String())
	return err
}

// ScopeTree renders the scope tree under root, one scope per line, each
// nested two columns deeper than its parent.
func ScopeTree(root *analysis.Scope) string {
	var sb strings.Builder
	var walk func(s *analysis.Scope)
	walk = func(s *analysis.Scope) {
		line := fmt.Sprintf("%s (scope %d, node %d)\n", s.Name, s.ID, s.Node.ID)
		sb.WriteString(indent.String(line, uint(2*s.Depth())))
		for _, c := range s.Children {
			walk(c)
		}
	}
	walk(root)
	return sb.String()
}

// SymbolTable renders one row per declaration.
func SymbolTable(t *analysis.SymbolTable) string {
	rows := [][]string{{"SCOPE", "NAME", "KIND", "TYPE", "NODE"}}
	for _, sym := range t.Entries() {
		rows = append(rows, []string{
			sym.Scope.Path(),
			sym.Name,
			sym.Kind.String(),
			sym.Type.String(),
			fmt.Sprint(sym.Node.ID),
		})
	}
	return columns(rows)
}

// FunctionTable renders one row per function, main first.
func FunctionTable(t *analysis.FunctionTable) string {
	rows := [][]string{{"NAME", "RETURNS", "PARAMS", "SCOPE"}}
	for _, fn := range t.Entries() {
		params := make([]string, len(fn.Params))
		for i, p := range fn.Params {
			params[i] = p.Name
		}
		ps := strings.Join(params, ",")
		if ps == "" {
			ps = "-"
		}
		rows = append(rows, []string{fn.Name, fn.Return.String(), ps, fn.Scope.Path()})
	}
	return columns(rows)
}

// columns pads every cell but the last of each row to its column's width.
func columns(rows [][]string) string {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	var sb strings.Builder
	for _, row := range rows {
		for i, cell := range row {
			if i == len(row)-1 {
				sb.WriteString(cell)
				break
			}
			sb.WriteString(padding.String(cell, uint(widths[i]+2)))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
