package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Result is the outcome of a settlement for display.
type Result struct {
	Succeeded bool
	TxHash    string
	TxURL     string
	Error     string
	Duration  time.Duration
}

// ResultComponent renders the final outcome.
type ResultComponent struct {
	result *Result
}

// NewResultComponent creates an empty result panel.
func NewResultComponent() *ResultComponent {
	return &ResultComponent{}
}

// Update sets the outcome.
func (r *ResultComponent) Update(result Result) {
	r.result = &result
}

// Done reports whether an outcome was set.
func (r *ResultComponent) Done() bool {
	return r.result != nil
}

// View renders the result panel, empty until an outcome is set.
func (r *ResultComponent) View() string {
	if r.result == nil {
		return ""
	}

	okStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	linkStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#60A5FA")).Underline(true)

	if !r.result.Succeeded {
		return errStyle.Render("✗ "+r.result.Error) + "\n"
	}

	out := okStyle.Render("✓ SETTLEMENT EXECUTED") + "\n" +
		fmt.Sprintf("  Tx hash:  %s\n", r.result.TxHash)
	if r.result.TxURL != "" {
		out += fmt.Sprintf("  Explorer: %s\n", linkStyle.Render(r.result.TxURL))
	}
	out += dimStyle.Render(fmt.Sprintf("  Took %s", r.result.Duration.Round(time.Millisecond))) + "\n"
	return out
}
