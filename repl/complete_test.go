// Copyright © 2018 The ELPS authors

package repl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func completions(line string) ([]string, int) {
	c := &labelCompleter{}
	cands, offset := c.Do([]rune(line), len([]rune(line)))
	var out []string
	for _, r := range cands {
		out = append(out, string(r))
	}
	return out, offset
}

func TestLabelCompleter(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		want   []string
		offset int
	}{
		{"production after paren", "(COM", []string{"MAND", "POSIT"}, 3},
		{"nested production", "(PROG main (GLOB", []string{"VARS"}, 4},
		{"keyword", "(COMMAND pr", []string{"int"}, 2},
		{"several keywords", "(BINOP a", []string{"dd", "nd"}, 1},
		{"command", ":ta", []string{"bles"}, 3},
		{"no match", "(ZZZ", nil, 0},
		{"empty prefix", "(PROG ", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, offset := completions(tt.line)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.offset, offset)
		})
	}
}
