// Copyright © 2024 The ELPS authors

// Package splctest provides helpers for testing packages that consume SPL
// syntax trees.
package splctest

import (
	"path/filepath"
	"testing"

	"github.com/luthersystems/splcheck/ast"
	"github.com/luthersystems/splcheck/parser"
	"github.com/stretchr/testify/require"
)

// ParseTree decodes tree notation or fails the test.
func ParseTree(t testing.TB, text string) *ast.Tree {
	t.Helper()
	tree, err := parser.ParseTree([]byte(text), t.Name()+".tree")
	require.NoError(t, err)
	return tree
}

// ReadFixture loads a tree from dir/testdata/name, choosing the decoder by
// extension.
func ReadFixture(t testing.TB, dir, name string) *ast.Tree {
	t.Helper()
	tree, err := parser.ReadFile(filepath.Join(dir, "testdata", name), parser.FormatAuto)
	require.NoError(t, err)
	return tree
}

// Fixtures lists the tree files in dir/testdata matching pattern.
func Fixtures(t testing.TB, dir, pattern string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "testdata", pattern))
	require.NoError(t, err)
	return matches
}
