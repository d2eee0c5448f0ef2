// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_Codes(t *testing.T) {
	seen := make(map[string]Kind)
	for _, k := range Kinds() {
		code := k.Code()
		require.Len(t, code, 5, k.String())
		prev, dup := seen[code]
		assert.False(t, dup, "%s and %s share code %s", prev, k, code)
		seen[code] = k
	}
	assert.Equal(t, "S0003", SelfNamedAsParent.Code())
	assert.Equal(t, "C0001", RecursiveMainForbidden.Code())
	assert.Equal(t, "T0001", TypeMismatch.Code())
	assert.Equal(t, "A0001", MalformedNode.Code())
	assert.Equal(t, "Unknown", Kind(0).String())
	assert.Equal(t, "E0000", Kind(0).Code())
}

func TestKind_UnmarshalText(t *testing.T) {
	var k Kind
	require.NoError(t, k.UnmarshalText([]byte("SiblingNameConflict")))
	assert.Equal(t, SiblingNameConflict, k)
	require.NoError(t, k.UnmarshalText([]byte("T0002")))
	assert.Equal(t, UnknownSymbol, k)
	assert.Error(t, k.UnmarshalText([]byte("Bogus")))
}

func TestSeverity_Text(t *testing.T) {
	var s Severity
	require.NoError(t, s.UnmarshalText([]byte("warning")))
	assert.Equal(t, SeverityWarning, s)
	assert.Error(t, s.UnmarshalText([]byte("fatal")))
	assert.Equal(t, "unknown", Severity(9).String())
}

func TestDiagnostic_String(t *testing.T) {
	d := Errorf(DuplicateDeclaration, 14, "V_a is already declared in scope %s", "F_a")
	assert.Equal(t, "node 14: V_a is already declared in scope F_a [S0001]", d.String())

	d.Spans = []Span{{File: "a.tree", Line: 3, Col: 9}}
	d.Notes = []string{"first declared at node 6"}
	assert.Equal(t, "a.tree:3:9: V_a is already declared in scope F_a [S0001]\n  = note: first declared at node 6", d.String())
}

func TestFormatJSON(t *testing.T) {
	diags := []Diagnostic{Errorf(TypeMismatch, 21, "print expects num or text, got bool")}
	var buf bytes.Buffer
	require.NoError(t, FormatJSON(&buf, diags))

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "error", decoded[0]["severity"])
	assert.Equal(t, "TypeMismatch", decoded[0]["kind"])
	assert.Equal(t, "T0001", decoded[0]["code"])
	assert.Equal(t, float64(21), decoded[0]["node"])
	assert.NotContains(t, decoded[0], "spans")
}

func TestHasErrorsAndCount(t *testing.T) {
	assert.False(t, HasErrors(nil))
	diags := []Diagnostic{
		{Severity: SeverityNote, Kind: TypeMismatch},
		Errorf(UnreachableFunction, 1, "x"),
		Errorf(UnreachableFunction, 2, "y"),
	}
	assert.True(t, HasErrors(diags))
	assert.Equal(t, map[Kind]int{TypeMismatch: 1, UnreachableFunction: 2}, CountByKind(diags))
}

func TestParseColorMode(t *testing.T) {
	for in, want := range map[string]ColorMode{"": ColorAuto, "auto": ColorAuto, "always": ColorAlways, "never": ColorNever} {
		got, err := ParseColorMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseColorMode("sometimes")
	assert.Error(t, err)
}

func TestColorMode_Text(t *testing.T) {
	assert.Equal(t, "never", ColorNever.String())
	assert.Equal(t, "ColorMode(7)", ColorMode(7).String())

	var m ColorMode
	require.NoError(t, m.UnmarshalText([]byte("always")))
	assert.Equal(t, ColorAlways, m)
	assert.Error(t, m.UnmarshalText([]byte("sometimes")))
	assert.Equal(t, ColorAlways, m, "a bad value leaves the mode unchanged")
}
