// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"fmt"
	"os"
)

// ColorMode controls when ANSI color codes are used.
type ColorMode int

const (
	ColorAuto   ColorMode = iota // detect based on terminal and NO_COLOR
	ColorAlways                  // always use colors
	ColorNever                   // never use colors
)

var colorModeNames = []string{
	ColorAuto:   "auto",
	ColorAlways: "always",
	ColorNever:  "never",
}

func (m ColorMode) String() string {
	if m < 0 || int(m) >= len(colorModeNames) {
		return fmt.Sprintf("ColorMode(%d)", int(m))
	}
	return colorModeNames[m]
}

// ParseColorMode maps the --color flag values auto, always and never. The
// empty string means auto.
func ParseColorMode(s string) (ColorMode, error) {
	if s == "" {
		return ColorAuto, nil
	}
	for m, name := range colorModeNames {
		if name == s {
			return ColorMode(m), nil
		}
	}
	return ColorAuto, fmt.Errorf("invalid color mode %q (want auto, always or never)", s)
}

// UnmarshalText lets a color mode be read from configuration files.
func (m *ColorMode) UnmarshalText(text []byte) error {
	mode, err := ParseColorMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// palette maps each part of a rendered diagnostic to its escape sequence.
type palette struct {
	severity map[Severity]string
	bold     string
	gutter   string // arrows, bars and line numbers
	marker   string // underline and span label
	note     string
	path     string
	reset    string
}

var ansiPalette = palette{
	severity: map[Severity]string{
		SeverityError:   "\033[1;31m",
		SeverityWarning: "\033[33m",
		SeverityNote:    "\033[1;36m",
	},
	bold:   "\033[1m",
	gutter: "\033[1;34m",
	marker: "\033[1;31m",
	note:   "\033[1;36m",
	path:   "\033[2m",
	reset:  "\033[0m",
}

var noPalette = palette{}

func choosePalette(mode ColorMode, w *os.File) palette {
	switch mode {
	case ColorAlways:
		return ansiPalette
	case ColorNever:
		return noPalette
	}
	if os.Getenv("NO_COLOR") != "" || !isTerminal(w) {
		return noPalette
	}
	return ansiPalette
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
