package cli

import "github.com/charmbracelet/lipgloss"

// Shared output styles. Lipgloss drops the colour codes when stdout is
// not a terminal, so piped output stays plain.
var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	pathStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
	labelStyle = lipgloss.NewStyle().Bold(true).Width(18)
)
