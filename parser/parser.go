// Copyright © 2024 The ELPS authors

// Package parser reads finished syntax trees from files.
//
// SPL source text is tokenized and parsed elsewhere; this package only
// decodes the serialized trees that parser emits, in one of three
// encodings:
//
//	tree  parenthesized notation, (LABEL child...), one node per list
//	yaml  nested mappings with label, optional id and children
//	xml   the reference parser's SYNTREE document (UNID/SYMB/CHILDREN)
package parser

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/luthersystems/splcheck/ast"
)

// Format names a tree encoding.
type Format int

const (
	FormatAuto Format = iota // choose by file extension
	FormatTree
	FormatYAML
	FormatXML
)

var formatNames = []string{
	FormatAuto: "auto",
	FormatTree: "tree",
	FormatYAML: "yaml",
	FormatXML:  "xml",
}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return "unknown"
	}
	return formatNames[f]
}

// ParseFormat maps a --format flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "tree", "sexpr":
		return FormatTree, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "xml":
		return FormatXML, nil
	}
	return FormatAuto, fmt.Errorf("unknown tree format %q (want auto, tree, yaml or xml)", s)
}

// Extensions lists the file extensions recognized as tree files.
var Extensions = []string{".tree", ".yaml", ".yml", ".xml"}

// FormatFor guesses the encoding of a file from its extension. Unknown
// extensions are read as tree notation.
func FormatFor(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".xml":
		return FormatXML
	default:
		return FormatTree
	}
}

// Error is a problem decoding a tree file.
type Error struct {
	Pos ast.Position
	Msg string
	Err error
}

func (e *Error) Error() string {
	loc := e.Pos.String()
	if loc == "" {
		loc = "<input>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", loc, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", loc, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func errorf(pos ast.Position, format string, args ...interface{}) *Error {
	return &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// Read decodes a tree from r. name is used for positions and, with
// FormatAuto, to pick the encoding.
func Read(r io.Reader, name string, format Format) (*ast.Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return Parse(data, name, format)
}

// ReadFile reads and decodes the tree stored at path.
func ReadFile(path string, format Format) (*ast.Tree, error) {
	data, err := os.ReadFile(path) //nolint:gosec // reads user-specified tree files
	if err != nil {
		return nil, err
	}
	return Parse(data, path, format)
}

// Parse decodes a tree from memory.
func Parse(data []byte, name string, format Format) (*ast.Tree, error) {
	if format == FormatAuto {
		format = FormatFor(name)
	}
	switch format {
	case FormatTree:
		return ParseTree(data, name)
	case FormatYAML:
		return ParseYAML(data, name)
	case FormatXML:
		return ParseXML(data, name)
	}
	return nil, fmt.Errorf("unsupported tree format %s", format)
}
