// Package ui holds the ANSI styling used for console output.
package ui

import (
	"os"

	"github.com/mattn/go-isatty"
)

// ANSI color and style constants for CLI output
const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorDim   = "\033[2m"

	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorWhite  = "\033[97m"
	ColorRed    = "\033[31m"
)

// Enabled turns styling on or off. It defaults to whether stdout is a terminal.
var Enabled = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

func style(code, s string) string {
	if !Enabled {
		return s
	}
	return code + s + ColorReset
}

// Bold renders a heading
func Bold(s string) string {
	return style(ColorBold, s)
}

// Success renders a positive outcome
func Success(s string) string {
	return style(ColorGreen, s)
}

// Info renders secondary text
func Info(s string) string {
	return style(ColorDim+ColorYellow, s)
}

// Error renders a failure
func Error(s string) string {
	return style(ColorRed, s)
}
