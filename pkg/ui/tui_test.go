package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fd1az/swap-settler/business/settlement/domain"
	"github.com/fd1az/swap-settler/pkg/ui/components"
)

func apply(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestModel_SettlementFlow(t *testing.T) {
	m := apply(t, New(),
		tea.WindowSizeMsg{Width: 120, Height: 40},
		StartedMsg{Pair: "WETH/wstETH", SellAmount: "0.1", Mode: "api"},
		StageMsg{From: domain.StateIdle, To: domain.StatePriceFetched},
		StageMsg{From: domain.StatePriceFetched, To: domain.StateAllowanceVerified},
		StageMsg{From: domain.StateAllowanceVerified, To: domain.StateQuoted},
		ReportMsg{BuyAmount: "84", MinBuyAmount: "83", Report: domain.Report{
			Liquidity: []domain.SourceShare{{Source: "Ambient"}},
		}},
		StageMsg{From: domain.StateQuoted, To: domain.StateNoSignatureNeeded},
		StageMsg{From: domain.StateNoSignatureNeeded, To: domain.StateExecuted},
		FinishedMsg{Succeeded: true, TxHash: "0xfeed", TxURL: "https://scrollscan.co/tx/0xfeed"},
	)

	if m.phase != PhaseDashboard {
		t.Fatalf("expected dashboard, got %s", m.phase)
	}

	steps := m.stages.Steps()
	want := []components.StepStatus{
		components.StepDone, components.StepDone, components.StepDone,
		components.StepSkipped, components.StepDone,
	}
	for i, s := range steps {
		if s.Status != want[i] {
			t.Errorf("step %s: got %s, want %s", s.Label, s.Status, want[i])
		}
	}

	view := m.View()
	for _, w := range []string{"WETH/wstETH", "Ambient", "SETTLEMENT EXECUTED", "https://scrollscan.co/tx/0xfeed"} {
		if !strings.Contains(view, w) {
			t.Errorf("expected %q in view", w)
		}
	}
}

func TestModel_FailureMarksStage(t *testing.T) {
	m := apply(t, New(),
		StartedMsg{Pair: "WETH/wstETH"},
		StageMsg{From: domain.StateIdle, To: domain.StatePriceFetched},
		StageMsg{From: domain.StatePriceFetched, To: domain.StateFailed, FailedStage: domain.StageAllowance},
		FinishedMsg{Error: "settlement failed at stage allowance: APPROVAL_FAILED"},
	)

	steps := m.stages.Steps()
	if steps[1].Status != components.StepFailed {
		t.Errorf("expected allowance failed, got %s", steps[1].Status)
	}
	for _, s := range steps[2:] {
		if s.Status != components.StepPending {
			t.Errorf("expected %s pending, got %s", s.Label, s.Status)
		}
	}
	if !strings.Contains(m.View(), "APPROVAL_FAILED") {
		t.Error("expected failure in view")
	}
}

func TestModel_ErrorsAreCapped(t *testing.T) {
	m := New()
	for i := 0; i < 5; i++ {
		m = apply(t, m, ErrorMsg{Error: errors.New("boom")})
	}
	if len(m.errors) != maxErrors {
		t.Errorf("expected %d errors, got %d", maxErrors, len(m.errors))
	}
}

func TestModel_QuitKey(t *testing.T) {
	next, cmd := New().Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if !next.(Model).quitting || cmd == nil {
		t.Error("expected quit")
	}
}

func TestModel_AnyKeySkipsWelcome(t *testing.T) {
	started := make(chan struct{}, 1)
	OnStartModules = func() { started <- struct{}{} }
	t.Cleanup(func() { OnStartModules = nil })

	m := apply(t, New(), tea.KeyMsg{Type: tea.KeyEnter})
	if m.phase != PhaseStartup {
		t.Errorf("expected startup phase, got %s", m.phase)
	}
	<-started
}

func TestModel_ActivityToggle(t *testing.T) {
	m := apply(t, New(),
		tea.WindowSizeMsg{Width: 120, Height: 40},
		StartedMsg{Pair: "WETH -> wstETH", SellAmount: "0.1 WETH", Mode: "onchain"},
	)
	if !strings.Contains(m.View(), "ACTIVITY") {
		t.Fatal("expected activity panel by default")
	}

	m = apply(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	if strings.Contains(m.View(), "ACTIVITY") {
		t.Error("expected activity panel to be hidden")
	}
	if !strings.Contains(m.View(), "onchain") {
		t.Error("expected execution mode in the status bar")
	}
}
