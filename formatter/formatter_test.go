// Copyright © 2024 The ELPS authors

package formatter

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/luthersystems/splcheck/analysis"
	"github.com/luthersystems/splcheck/ast"
	"github.com/luthersystems/splcheck/ast/build"
	"github.com/luthersystems/splcheck/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type formatTest struct {
	name     string
	input    string
	expected string
	config   *Config
}

func runFormatTests(t *testing.T, tests []formatTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.config
			got, err := FormatFile([]byte(tt.input), "in.tree", cfg)
			require.NoError(t, err, "Format failed")
			assert.Equal(t, tt.expected, string(got), "formatted output mismatch")

			// Idempotency: formatting the output again should produce identical output
			got2, err := FormatFile(got, "out.tree", cfg)
			require.NoError(t, err, "Format (idempotency) failed")
			assert.Equal(t, string(got), string(got2), "not idempotent")
		})
	}
}

func narrow(width int) *Config {
	cfg := DefaultConfig()
	cfg.MaxWidth = width
	return cfg
}

func TestFormat_Basic(t *testing.T) {
	runFormatTests(t, []formatTest{
		{
			name:     "inline",
			input:    "(ATOMIC   (VNAME\n V_x))",
			expected: "(ATOMIC (VNAME V_x))\n",
		},
		{
			name:     "comments dropped",
			input:    "# header\n(ATOMIC (CONST \"Hello\")) # trailing",
			expected: "(ATOMIC (CONST \"Hello\"))\n",
		},
		{
			name:     "barred leaves",
			input:    "(ASSIGN (VNAME V_a) |< input|)",
			expected: "(ASSIGN (VNAME V_a) |< input|)\n",
		},
		{
			name:  "program skeleton breaks",
			input: "(PROG main (GLOBVARS (VTYP num) (VNAME V_x) , (GLOBVARS)) (ALGO begin (INSTRUC (COMMAND halt) ;) end) (FUNCTIONS))",
			expected: `(PROG main
  (GLOBVARS (VTYP num) (VNAME V_x) , (GLOBVARS))
  (ALGO begin (INSTRUC (COMMAND halt) ;) end)
  (FUNCTIONS))
`,
		},
		{
			name:   "width limit",
			input:  "(OP (BINOP add) |(| (ARG (ATOMIC (CONST 5))) , (ARG (ATOMIC (CONST 3))) |)|)",
			config: narrow(20),
			expected: `(OP
  (BINOP add)
  |(|
  (ARG
    (ATOMIC
      (CONST 5)))
  ,
  (ARG
    (ATOMIC
      (CONST 3)))
  |)|)
`,
		},
		{
			name:     "inline rule ignores width",
			input:    "(VNAME V_a_rather_long_variable_name)",
			config:   narrow(10),
			expected: "(VNAME V_a_rather_long_variable_name)\n",
		},
	})
}

func TestFormat_RoundTrip(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "check", "testdata", "*.tree"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			src, err := os.ReadFile(path)
			require.NoError(t, err)
			orig, err := parser.ParseTree(src, path)
			require.NoError(t, err)

			out, err := Format(orig, nil)
			require.NoError(t, err)
			back, err := parser.ParseTree(out, "formatted.tree")
			require.NoError(t, err)
			assert.Equal(t, shape(orig.Root), shape(back.Root))

			again, err := Format(back, nil)
			require.NoError(t, err)
			assert.Equal(t, string(out), string(again))
			for i, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
				assert.Equal(t, strings.TrimRight(line, " "), line, "line %d has trailing blanks", i+1)
			}
		})
	}
}

// shape lists every node as "id:label" in pre-order.
func shape(root *ast.Node) []string {
	var out []string
	var walk func(n *ast.Node)
	walk = func(n *ast.Node) {
		out = append(out, fmt.Sprintf("%d:%s", n.ID, n.Label()))
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	return out
}

func TestLeafText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"V_x", "V_x"},
		{`"Hello"`, `"Hello"`},
		{"< input", "|< input|"},
		{"(", "|(|"},
		{"#", "|#|"},
		{`"`, `|"|`},
		{"", "||"},
	}
	for _, tt := range tests {
		got, err := leafText(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	_, err := leafText("a|b")
	assert.Error(t, err)
	_, err = leafText("a\nb")
	assert.Error(t, err)
}

func TestFormat_UnwritableLeaf(t *testing.T) {
	tree := ast.Build(ast.New(ast.Const, ast.Leaf("a|b")))
	_, err := Format(tree, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node 1")
}

func TestFormatFile_Error(t *testing.T) {
	_, err := FormatFile([]byte("(PROG"), "bad.tree", nil)
	require.Error(t, err)
	var perr *parser.Error
	assert.ErrorAs(t, err, &perr)
}

func TestFormatYAML(t *testing.T) {
	tree := ast.Build(build.Prog(
		build.GlobVars(build.Var("text", "V_s")),
		build.Algo(build.Input("V_s"), build.Print(build.Text("Hello"))),
		nil))

	out, err := FormatYAML(tree, false)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "label: PROG\n"), string(out))
	assert.NotContains(t, string(out), "id:")
	back, err := parser.ParseYAML(out, "out.yaml")
	require.NoError(t, err)
	assert.Equal(t, shape(tree.Root), shape(back.Root))

	out, err = FormatYAML(tree, true)
	require.NoError(t, err)
	assert.Contains(t, string(out), "id: 0")
	back, err = parser.ParseYAML(out, "out.yaml")
	require.NoError(t, err)
	assert.Equal(t, shape(tree.Root), shape(back.Root))
}

func TestFormatYAML_KeepsIDs(t *testing.T) {
	leaf := ast.Leaf("5")
	leaf.ID = 30
	c := ast.New(ast.Const, leaf)
	c.ID = 20
	root := ast.New(ast.Atomic, c)
	root.ID = 10
	tree := ast.MustTree(root)

	out, err := FormatYAML(tree, true)
	require.NoError(t, err)
	back, err := parser.ParseYAML(out, "ids.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"10:ATOMIC", "20:CONST", "30:5"}, shape(back.Root))
}

func tablesProgram() *analysis.Result {
	inner := build.Decl(build.Func{
		Return: "void", Name: "F_b",
		Params: [3]string{"V_p", "V_q", "V_r"},
		Locals: [3]build.VarDecl{build.Var("num", "V_s"), build.Var("num", "V_t"), build.Var("text", "V_u")},
		Algo:   build.Algo(build.Halt()),
	})
	outer := build.Decl(build.Func{
		Return: "num", Name: "F_a",
		Params: [3]string{"V_a", "V_b", "V_c"},
		Locals: [3]build.VarDecl{build.Var("num", "V_d"), build.Var("num", "V_e"), build.Var("text", "V_f")},
		Algo:   build.Algo(build.Return(build.Ref("V_a"))),
		Sub:    []*ast.Node{inner},
	})
	tree := ast.Build(build.Prog(build.GlobVars(build.Var("num", "V_x")), build.Algo(build.Halt()), build.Functions(outer)))
	return analysis.Build(tree, nil)
}

func TestScopeTree(t *testing.T) {
	res := tablesProgram()
	require.True(t, res.OK)
	want := fmt.Sprintf("main (scope 0, node 0)\n  F_a (scope 1, node %d)\n    F_b (scope 2, node %d)\n",
		res.Scopes[1].Node.ID, res.Scopes[2].Node.ID)
	assert.Equal(t, want, ScopeTree(res.Root))
}

func rows(s string) [][]string {
	var out [][]string
	for _, line := range strings.Split(strings.TrimRight(s, "\n"), "\n") {
		out = append(out, strings.Fields(line))
	}
	return out
}

func TestSymbolTable(t *testing.T) {
	res := tablesProgram()
	got := rows(SymbolTable(res.Symbols))
	require.Len(t, got, 1+res.Symbols.Len())
	assert.Equal(t, []string{"SCOPE", "NAME", "KIND", "TYPE", "NODE"}, got[0])
	x := res.Symbols.Entries()[0]
	assert.Equal(t, []string{"main", "V_x", "global", "num", fmt.Sprint(x.Node.ID)}, got[1])
	assert.Equal(t, []string{"main/F_a", "V_a", "parameter", "num"}, got[2][:4])
	assert.Equal(t, []string{"main/F_a/F_b", "V_u", "local", "text"}, got[len(got)-1][:4])
}

func TestFunctionTable(t *testing.T) {
	res := tablesProgram()
	got := rows(FunctionTable(res.Functions))
	assert.Equal(t, [][]string{
		{"NAME", "RETURNS", "PARAMS", "SCOPE"},
		{"main", "void", "-", "main"},
		{"F_a", "num", "V_a,V_b,V_c", "main/F_a"},
		{"F_b", "void", "V_p,V_q,V_r", "main/F_a/F_b"},
	}, got)
}

func TestWriteTables(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTables(&buf, tablesProgram()))
	out := buf.String()
	for _, section := range []string{"scopes:\n", "\nsymbols:\n", "\nfunctions:\n"} {
		assert.Contains(t, out, section)
	}
	assert.Contains(t, out, "\n  main (scope 0, node 0)\n")
	assert.Contains(t, out, "\n      F_b (scope 2")
}
