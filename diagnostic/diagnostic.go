// Copyright © 2024 The ELPS authors

// Package diagnostic describes problems found by the semantic checker and
// renders them as Rust-style annotated reports. It does not depend on the
// ast package; nodes are referred to by their integer id.
package diagnostic

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Severity indicates the severity level of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "unknown"
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name.
func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	case "note":
		*s = SeverityNote
	default:
		return fmt.Errorf("unknown severity: %q", text)
	}
	return nil
}

// Kind classifies a semantic problem. Every reported condition maps to
// exactly one kind.
type Kind int

const (
	DuplicateDeclaration Kind = iota + 1
	UndeclaredVariable
	SelfNamedAsParent
	SiblingNameConflict
	RecursiveMainForbidden
	UnreachableFunction
	TypeMismatch
	UnknownSymbol
	MalformedNode
)

var kindInfo = map[Kind]struct {
	name string
	code string
}{
	DuplicateDeclaration:   {"DuplicateDeclaration", "S0001"},
	UndeclaredVariable:     {"UndeclaredVariable", "S0002"},
	SelfNamedAsParent:      {"SelfNamedAsParent", "S0003"},
	SiblingNameConflict:    {"SiblingNameConflict", "S0004"},
	RecursiveMainForbidden: {"RecursiveMainForbidden", "C0001"},
	UnreachableFunction:    {"UnreachableFunction", "C0002"},
	TypeMismatch:           {"TypeMismatch", "T0001"},
	UnknownSymbol:          {"UnknownSymbol", "T0002"},
	MalformedNode:          {"MalformedNode", "A0001"},
}

// Kinds returns every kind in code order.
func Kinds() []Kind {
	return []Kind{
		DuplicateDeclaration, UndeclaredVariable, SelfNamedAsParent, SiblingNameConflict,
		RecursiveMainForbidden, UnreachableFunction,
		TypeMismatch, UnknownSymbol,
		MalformedNode,
	}
}

func (k Kind) String() string {
	if info, ok := kindInfo[k]; ok {
		return info.name
	}
	return "Unknown"
}

// Code returns the stable error code for the kind. The letter names the
// phase that reports it: S scope, C calls, T types, A tree shape.
func (k Kind) Code() string {
	if info, ok := kindInfo[k]; ok {
		return info.code
	}
	return "E0000"
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText accepts either a kind name or its code.
func (k *Kind) UnmarshalText(text []byte) error {
	s := string(text)
	for kind, info := range kindInfo {
		if info.name == s || info.code == s {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown diagnostic kind: %q", s)
}

// Span identifies a region of source to highlight in the diagnostic.
type Span struct {
	File   string `json:"file"`             // path for reading source; display name if unreadable
	Line   int    `json:"line"`             // 1-based line number
	Col    int    `json:"col,omitempty"`    // 1-based start column
	EndCol int    `json:"endCol,omitempty"` // 1-based end column (0 = auto-detect from source)
	Label  string `json:"label,omitempty"`  // text shown under the underline
}

// Diagnostic is a single reported problem.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Kind     Kind     `json:"kind"`
	// Node is the id of the offending syntax tree node.
	Node    int    `json:"node"`
	Message string `json:"message"`
	// Path is the label chain from the root to Node, when known.
	Path  string   `json:"path,omitempty"`
	Spans []Span   `json:"spans,omitempty"`
	Notes []string `json:"notes,omitempty"`
}

// Errorf returns an error diagnostic of the given kind at node.
func Errorf(kind Kind, node int, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Severity: SeverityError,
		Kind:     kind,
		Node:     node,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Code returns the error code of the diagnostic's kind.
func (d Diagnostic) Code() string {
	return d.Kind.Code()
}

// String returns the diagnostic on one line in go vet style:
// location: message [code], followed by note lines.
func (d Diagnostic) String() string {
	loc := fmt.Sprintf("node %d", d.Node)
	if len(d.Spans) > 0 {
		sp := d.Spans[0]
		switch {
		case sp.Line == 0:
			loc = sp.File
		case sp.Col == 0:
			loc = fmt.Sprintf("%s:%d", sp.File, sp.Line)
		default:
			loc = fmt.Sprintf("%s:%d:%d", sp.File, sp.Line, sp.Col)
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s [%s]", loc, d.Message, d.Code())
	for _, n := range d.Notes {
		b.WriteString("\n  = note: ")
		b.WriteString(n)
	}
	return b.String()
}

// HasErrors reports whether any diagnostic has error severity.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// CountByKind tallies diagnostics per kind.
func CountByKind(diags []Diagnostic) map[Kind]int {
	counts := make(map[Kind]int)
	for _, d := range diags {
		counts[d.Kind]++
	}
	return counts
}

type jsonDiagnostic struct {
	Diagnostic
	Code string `json:"code"`
}

// FormatText writes each diagnostic on its own line.
func FormatText(w io.Writer, diags []Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(w, d.String()) //nolint:errcheck // best-effort output to writer
	}
}

// FormatJSON writes diagnostics as an indented JSON array. Each element
// carries the error code alongside the kind name.
func FormatJSON(w io.Writer, diags []Diagnostic) error {
	out := make([]jsonDiagnostic, len(diags))
	for i, d := range diags {
		out[i] = jsonDiagnostic{Diagnostic: d, Code: d.Code()}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
