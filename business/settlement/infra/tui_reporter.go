package infra

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fd1az/swap-settler/business/settlement/domain"
	"github.com/fd1az/swap-settler/pkg/ui"
)

// Sender delivers messages to a running Bubble Tea program.
type Sender interface {
	Send(msg tea.Msg)
}

// TUIReporter implements Reporter for the Bubble Tea TUI.
type TUIReporter struct {
	program Sender
	txURL   func(hash string) string
}

// NewTUIReporter creates a TUIReporter forwarding to program.
func NewTUIReporter(program Sender, txURL func(hash string) string) *TUIReporter {
	return &TUIReporter{program: program, txURL: txURL}
}

// Start is a no-op; the program is run by the caller.
func (r *TUIReporter) Start(ctx context.Context) error {
	return nil
}

// StageChanged sends the new state to the TUI.
func (r *TUIReporter) StageChanged(s *domain.Settlement, from, to domain.State) {
	msg := ui.StageMsg{SettlementID: s.ID, From: from, To: to}
	if to == domain.StateFailed && s.Failure != nil {
		msg.FailedStage = s.Failure.Stage
	}
	r.program.Send(msg)
}

// ReportQuote sends the transparency report to the TUI.
func (r *TUIReporter) ReportQuote(s *domain.Settlement, report domain.Report) {
	msg := ui.ReportMsg{Report: report}
	if s.Quote != nil {
		msg.BuyAmount = s.Quote.BuyAmount.String()
		msg.MinBuyAmount = s.Quote.MinBuyAmount.String()
	}
	r.program.Send(msg)
}

// Finished sends the outcome to the TUI.
func (r *TUIReporter) Finished(s *domain.Settlement) {
	msg := ui.FinishedMsg{
		Succeeded: s.Succeeded(),
		Duration:  s.Duration(),
	}
	if s.Failure != nil {
		msg.Error = s.Failure.Error()
	} else {
		msg.TxHash = s.TxHash.Hex()
		if r.txURL != nil {
			msg.TxURL = r.txURL(msg.TxHash)
		}
	}
	r.program.Send(msg)
}

// Stop is a no-op; the program quits on user input.
func (r *TUIReporter) Stop() error {
	return nil
}
