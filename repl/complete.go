// Copyright © 2018 The ELPS authors

package repl

import (
	"sort"
	"strings"

	"github.com/luthersystems/splcheck/ast"
)

// keywords are the terminals of the language that appear as bare leaves.
var keywords = []string{
	"main", "begin", "end", "skip", "halt", "print", "return", "input",
	"if", "then", "else", "num", "text", "void",
	"not", "sqrt", "or", "and", "eq", "grt", "add", "sub", "mul", "div",
}

// labelCompleter implements readline.AutoCompleter. Right after an open
// paren it offers production labels; elsewhere it offers keywords, and at
// the start of a line the ':' commands.
type labelCompleter struct{}

func (c *labelCompleter) Do(line []rune, pos int) ([][]rune, int) {
	// Extract the word being typed (backwards from cursor to whitespace or open paren).
	start := pos
	for start > 0 {
		ch := line[start-1]
		if ch == ' ' || ch == '\t' || ch == '(' || ch == '\n' {
			break
		}
		start--
	}
	prefix := string(line[start:pos])
	if prefix == "" {
		return nil, 0
	}
	afterParen := start > 0 && line[start-1] == '('

	var candidates []string
	switch {
	case afterParen:
		for _, k := range ast.Kinds() {
			candidates = appendMatch(candidates, k.String(), prefix)
		}
	case start == 0 && strings.HasPrefix(prefix, ":"):
		for _, cmd := range commands {
			candidates = appendMatch(candidates, cmd.name, prefix)
		}
	default:
		for _, kw := range keywords {
			candidates = appendMatch(candidates, kw, prefix)
		}
	}
	if len(candidates) == 0 {
		return nil, 0
	}
	sort.Strings(candidates)

	// Build completions: each entry is the suffix to append.
	result := make([][]rune, 0, len(candidates))
	for _, cand := range candidates {
		result = append(result, []rune(cand[len(prefix):]))
	}
	return result, len(prefix)
}

func appendMatch(dst []string, cand, prefix string) []string {
	if strings.HasPrefix(cand, prefix) {
		return append(dst, cand)
	}
	return dst
}
