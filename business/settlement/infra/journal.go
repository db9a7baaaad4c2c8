package infra

import (
	"context"
	"time"

	"github.com/fd1az/swap-settler/business/settlement/domain"
)

// JournalEntry is the persisted form of a finished settlement.
type JournalEntry struct {
	ID           string              `json:"id"`
	ChainID      uint64              `json:"chain_id"`
	Taker        string              `json:"taker"`
	SellToken    string              `json:"sell_token"`
	BuyToken     string              `json:"buy_token"`
	SellAmount   string              `json:"sell_amount"`
	State        string              `json:"state"`
	History      []domain.Transition `json:"history"`
	ApprovalTx   string              `json:"approval_tx,omitempty"`
	Signed       bool                `json:"signed"`
	BuyAmount    string              `json:"buy_amount,omitempty"`
	TxHash       string              `json:"tx_hash,omitempty"`
	FailureStage string              `json:"failure_stage,omitempty"`
	FailureCode  string              `json:"failure_code,omitempty"`
	Failure      string              `json:"failure,omitempty"`
	StartedAt    time.Time           `json:"started_at"`
	FinishedAt   time.Time           `json:"finished_at"`
	DurationMs   int64               `json:"duration_ms"`
}

// NewJournalEntry flattens s.
func NewJournalEntry(s *domain.Settlement) JournalEntry {
	e := JournalEntry{
		ID:         s.ID,
		ChainID:    s.Intent.ChainID,
		Taker:      s.Intent.Taker.Hex(),
		SellToken:  s.Intent.SellToken.Hex(),
		BuyToken:   s.Intent.BuyToken.Hex(),
		State:      s.State.String(),
		History:    s.History,
		Signed:     !s.Signature.IsZero(),
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
		DurationMs: s.Duration().Milliseconds(),
	}
	if s.Intent.SellAmount != nil {
		e.SellAmount = s.Intent.SellAmount.String()
	}
	if s.Approval != nil && !s.Approval.Skipped {
		e.ApprovalTx = s.Approval.TxHash.Hex()
	}
	if s.Quote != nil {
		e.BuyAmount = s.Quote.BuyAmount.String()
	}
	if s.Succeeded() {
		e.TxHash = s.TxHash.Hex()
	}
	if s.Failure != nil {
		e.FailureStage = s.Failure.Stage.String()
		e.FailureCode = string(s.Failure.Code)
		e.Failure = s.Failure.Err.Error()
	}
	return e
}

// NopJournal discards settlements.
type NopJournal struct{}

func (NopJournal) Record(context.Context, *domain.Settlement) error { return nil }
func (NopJournal) Close() error                                     { return nil }
