package output

import (
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/bimmerbailey/memsift/internal/parser"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

// ColorMode determines when to use colored output.
type ColorMode int

const (
	ColorAuto   ColorMode = iota // Auto-detect based on TTY
	ColorAlways                  // Always use colors
	ColorNever                   // Never use colors
)

// ParseColorMode converts a string to a ColorMode, defaulting to auto.
func ParseColorMode(s string) ColorMode {
	switch strings.ToLower(s) {
	case "always":
		return ColorAlways
	case "never":
		return ColorNever
	default:
		return ColorAuto
	}
}

// shouldColorize determines if output should be colorized based on mode and
// TTY detection.
func shouldColorize(mode ColorMode, w io.Writer) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		if f, ok := w.(*os.File); ok {
			return term.IsTerminal(int(f.Fd()))
		}
		return false
	}
}

// colorizeHeading colors a block's first line by diagnostic category.
func colorizeHeading(cat parser.Category, line string) string {
	switch cat {
	case parser.CategoryInvalidAccess, parser.CategoryTermination:
		return colorBold + colorRed + line + colorReset
	case parser.CategoryCondJump, parser.CategoryUninitialized:
		return colorYellow + line + colorReset
	case parser.CategoryLeak:
		return colorCyan + line + colorReset
	default:
		return line
	}
}
