// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fd1az/swap-settler/business/settlement/domain"
)

// StepStatus is the display state of one settlement step.
type StepStatus string

const (
	StepPending StepStatus = "pending"
	StepActive  StepStatus = "active"
	StepDone    StepStatus = "done"
	StepSkipped StepStatus = "skipped"
	StepFailed  StepStatus = "failed"
)

// Step is one row of the stage list.
type Step struct {
	Stage  domain.Stage
	Label  string
	Status StepStatus
	Note   string
}

// StagesComponent renders the settlement steps in order.
type StagesComponent struct {
	steps []Step
}

// NewStagesComponent creates the five step rows, all pending.
func NewStagesComponent() *StagesComponent {
	return &StagesComponent{steps: []Step{
		{Stage: domain.StagePrice, Label: "Price", Status: StepPending},
		{Stage: domain.StageAllowance, Label: "Allowance", Status: StepPending},
		{Stage: domain.StageQuote, Label: "Quote", Status: StepPending},
		{Stage: domain.StageSign, Label: "Signature", Status: StepPending},
		{Stage: domain.StageExecute, Label: "Execution", Status: StepPending},
	}}
}

// Steps returns a copy of the rows.
func (s *StagesComponent) Steps() []Step {
	return append([]Step(nil), s.steps...)
}

// Begin marks the first step active.
func (s *StagesComponent) Begin() {
	for i := range s.steps {
		s.steps[i].Status = StepPending
		s.steps[i].Note = ""
	}
	s.steps[0].Status = StepActive
}

// Advance applies a transition into to. failedStage is only read when to is failed.
func (s *StagesComponent) Advance(to domain.State, failedStage domain.Stage) {
	switch to {
	case domain.StatePriceFetched:
		s.complete(0, StepDone, "")
	case domain.StateAllowanceVerified:
		s.complete(1, StepDone, "")
	case domain.StateQuoted:
		s.complete(2, StepDone, "")
	case domain.StateSigned:
		s.complete(3, StepDone, "")
	case domain.StateNoSignatureNeeded:
		s.complete(3, StepSkipped, "not needed")
	case domain.StateExecuted:
		s.complete(4, StepDone, "")
	case domain.StateFailed:
		idx := s.index(failedStage)
		for i := range s.steps {
			if s.steps[i].Status == StepActive {
				s.steps[i].Status = StepPending
			}
		}
		s.steps[idx].Status = StepFailed
	}
}

func (s *StagesComponent) complete(idx int, status StepStatus, note string) {
	s.steps[idx].Status = status
	s.steps[idx].Note = note
	if idx+1 < len(s.steps) {
		s.steps[idx+1].Status = StepActive
	}
}

// index maps a stage to its row. Validation failures show on the first row.
func (s *StagesComponent) index(stage domain.Stage) int {
	for i, step := range s.steps {
		if step.Stage == stage {
			return i
		}
	}
	return 0
}

// View renders the list. spinner is drawn next to the active step.
func (s *StagesComponent) View(spinner string) string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	doneStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	failedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("SETTLEMENT"))
	sb.WriteString("\n\n")

	for _, step := range s.steps {
		var icon string
		var style lipgloss.Style

		switch step.Status {
		case StepDone:
			icon, style = "✓", doneStyle
		case StepSkipped:
			icon, style = "–", mutedStyle
		case StepActive:
			icon, style = spinner, activeStyle
		case StepFailed:
			icon, style = "✗", failedStyle
		default:
			icon, style = "○", mutedStyle
		}

		line := fmt.Sprintf("  %s %-10s", style.Render(icon), step.Label)
		if step.Note != "" {
			line += " " + mutedStyle.Render("("+step.Note+")")
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}
