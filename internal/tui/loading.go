package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// LoadingState is a spinner with a message.
type LoadingState struct {
	spinner spinner.Model
	message string
}

// NewLoadingState creates a dot spinner showing message.
func NewLoadingState(message string) *LoadingState {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = InfoStyle
	return &LoadingState{spinner: s, message: message}
}

// Init starts the spinner.
func (l *LoadingState) Init() tea.Cmd {
	return l.spinner.Tick
}

// Update advances the spinner on its own tick messages.
func (l *LoadingState) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	l.spinner, cmd = l.spinner.Update(msg)
	return cmd
}

// SetMessage changes the text next to the spinner.
func (l *LoadingState) SetMessage(message string) {
	l.message = message
}

// RenderLoading renders the spinner and message, or plain text when loading
// is nil.
func RenderLoading(loading *LoadingState) string {
	if loading == nil {
		return "Loading..."
	}
	return fmt.Sprintf("%s %s", loading.spinner.View(), loading.message)
}
