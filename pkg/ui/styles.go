package ui

import "github.com/charmbracelet/lipgloss"

// Palette
var (
	ColorPrimary = lipgloss.Color("#7C3AED")
	ColorSuccess = lipgloss.Color("#10B981")
	ColorDanger  = lipgloss.Color("#EF4444")
	ColorWarning = lipgloss.Color("#F59E0B")
	ColorMuted   = lipgloss.Color("#6B7280")
	ColorBorder  = lipgloss.Color("#374151")
)

var (
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(ColorPrimary).
			Padding(0, 2)

	ErrorValue = lipgloss.NewStyle().Foreground(ColorDanger)
	MutedValue = lipgloss.NewStyle().Foreground(ColorMuted)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1)

	// Execution mode colors.
	modeStyles = map[string]lipgloss.Style{
		"api":     lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true),
		"onchain": lipgloss.NewStyle().Foreground(ColorWarning).Bold(true),
	}
)

// ModeBadge renders the execution mode for the status bar.
func ModeBadge(mode string) string {
	style, ok := modeStyles[mode]
	if !ok {
		return MutedValue.Render(mode)
	}
	return style.Render(mode)
}
