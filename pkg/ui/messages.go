// Package ui provides the Bubble Tea TUI for the swap settler.
package ui

import (
	"time"

	"github.com/fd1az/swap-settler/business/settlement/domain"
)

// Message types for TUI updates

// StartedMsg is sent when a settlement attempt begins.
type StartedMsg struct {
	Pair       string
	SellAmount string
	Mode       string
}

// StageMsg is sent on every settlement state change.
type StageMsg struct {
	SettlementID string
	From         domain.State
	To           domain.State
	FailedStage  domain.Stage
}

// ReportMsg carries the transparency report once the quote is in.
type ReportMsg struct {
	Report       domain.Report
	BuyAmount    string
	MinBuyAmount string
}

// FinishedMsg is sent once with the outcome.
type FinishedMsg struct {
	Succeeded bool
	TxHash    string
	TxURL     string
	Error     string
	Duration  time.Duration
}

// ErrorMsg is sent when an error occurs outside the settlement itself.
type ErrorMsg struct {
	Error error
}

// LogMsg is sent to display a log message in the UI.
type LogMsg struct {
	Level   string // "info", "warn", "error"
	Message string
}

// TickMsg is sent periodically for UI updates.
type TickMsg struct{}

// StartModulesMsg signals that modules should start loading.
type StartModulesMsg struct{}
