package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Layout defaults used before the first WindowSizeMsg arrives.
const (
	defaultWidth  = 100
	defaultHeight = 30

	borderPadding = 4
	// Header, blank line, status bar and help line.
	chromeHeight = 5
)

// Colors.
const (
	ColorHeader   = lipgloss.Color("39")
	ColorLabel    = lipgloss.Color("245")
	ColorValue    = lipgloss.Color("252")
	ColorSubtle   = lipgloss.Color("241")
	ColorInfo     = lipgloss.Color("69")
	ColorError    = lipgloss.Color("196")
	ColorMutual   = lipgloss.Color("42")
	ColorSelected = lipgloss.Color("57")
	ColorBorder   = lipgloss.Color("63")
)

//nolint:gochecknoglobals // Shared style palette.
var (
	HeaderStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorHeader)
	LabelStyle    = lipgloss.NewStyle().Foreground(ColorLabel)
	ValueStyle    = lipgloss.NewStyle().Foreground(ColorValue)
	SubtleStyle   = lipgloss.NewStyle().Foreground(ColorSubtle)
	InfoStyle     = lipgloss.NewStyle().Foreground(ColorInfo).Italic(true)
	ErrorStyle    = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	MutualStyle   = lipgloss.NewStyle().Foreground(ColorMutual)
	SelectedStyle = lipgloss.NewStyle().Background(ColorSelected).Bold(true)
	StatusStyle   = lipgloss.NewStyle().Foreground(ColorSubtle).PaddingLeft(1)
	BoxStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)
)
