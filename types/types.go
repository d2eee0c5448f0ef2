// Copyright © 2024 The ELPS authors

// Package types defines the type tags shared by the scope builder and the
// type checker.
package types

// Type is the inferred or declared type of a syntactic construct.
type Type int

const (
	// Undefined marks a construct whose type error was already reported.
	Undefined Type = iota
	Numeric
	Text
	Boolean
	// Comparison is produced by eq and grt. It is only valid over two
	// numeric operands and collapses to Boolean.
	Comparison
	Void
)

var typeNames = [...]string{
	Undefined:  "undefined",
	Numeric:    "num",
	Text:       "text",
	Boolean:    "bool",
	Comparison: "comparison",
	Void:       "void",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "undefined"
	}
	return typeNames[t]
}

// MarshalText encodes the type by name.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// VarType maps a VTYP keyword to its type.
func VarType(keyword string) (Type, bool) {
	switch keyword {
	case "num":
		return Numeric, true
	case "text":
		return Text, true
	}
	return Undefined, false
}

// ReturnType maps an FTYP keyword to its type.
func ReturnType(keyword string) (Type, bool) {
	switch keyword {
	case "num":
		return Numeric, true
	case "void":
		return Void, true
	}
	return Undefined, false
}
