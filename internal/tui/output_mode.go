package tui

import (
	"os"

	"golang.org/x/term"
)

// OutputMode selects how results reach the terminal.
type OutputMode int

const (
	// OutputModePlain writes unstyled text.
	OutputModePlain OutputMode = iota
	// OutputModeStyled writes lipgloss-styled text without taking over the terminal.
	OutputModeStyled
	// OutputModeInteractive runs the full-screen list.
	OutputModeInteractive
)

// String returns the mode name.
func (m OutputMode) String() string {
	switch m {
	case OutputModePlain:
		return "plain"
	case OutputModeStyled:
		return "styled"
	case OutputModeInteractive:
		return "interactive"
	default:
		return "unknown"
	}
}

// DetectOutputMode picks a mode for stdout. plain and noColor force plain
// output, as do NO_COLOR, TERM=dumb and a non-terminal stdout unless
// forceColor is set. CI environments get styled output.
func DetectOutputMode(forceColor, noColor, plain bool) OutputMode {
	if plain || noColor || os.Getenv("NO_COLOR") != "" {
		return OutputModePlain
	}
	if os.Getenv("TERM") == "dumb" {
		return OutputModePlain
	}
	if !IsTerminal() {
		if forceColor {
			return OutputModeStyled
		}
		return OutputModePlain
	}
	if os.Getenv("CI") != "" {
		return OutputModeStyled
	}
	return OutputModeInteractive
}

// IsTerminal reports whether stdout is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// TerminalWidth returns the stdout width, or the default when unknown.
func TerminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}
