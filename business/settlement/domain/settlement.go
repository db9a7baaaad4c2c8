package domain

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	blockchainDomain "github.com/fd1az/swap-settler/business/blockchain/domain"
	quoteDomain "github.com/fd1az/swap-settler/business/quote/domain"
	"github.com/fd1az/swap-settler/internal/apperror"
)

// Transition is one recorded state change.
type Transition struct {
	From State     `json:"from"`
	To   State     `json:"to"`
	At   time.Time `json:"at"`
}

// StageFailure is the typed failure of an attempt.
type StageFailure struct {
	Stage Stage
	Code  apperror.Code
	Err   error
}

func (f *StageFailure) Error() string {
	return fmt.Sprintf("settlement failed at stage %s: %v", f.Stage, f.Err)
}

func (f *StageFailure) Unwrap() error {
	return f.Err
}

// Settlement records one attempt from intent to outcome.
type Settlement struct {
	ID         string
	Intent     quoteDomain.TradeIntent
	State      State
	History    []Transition
	Price      *quoteDomain.PriceQuote
	Approval   *blockchainDomain.ApprovalReceipt
	Quote      *quoteDomain.ExecutableQuote
	Signature  blockchainDomain.Signature
	TxHash     common.Hash
	Failure    *StageFailure
	StartedAt  time.Time
	FinishedAt time.Time
}

// NewSettlement starts an attempt in the idle state.
func NewSettlement(intent quoteDomain.TradeIntent, now time.Time) *Settlement {
	return &Settlement{
		ID:        uuid.NewString(),
		Intent:    intent,
		State:     StateIdle,
		StartedAt: now,
	}
}

// Advance moves to the next state, rejecting moves the machine does not allow.
func (s *Settlement) Advance(to State, now time.Time) error {
	if !CanTransition(s.State, to) {
		return apperror.New(apperror.CodeInvalidState,
			apperror.WithContext(fmt.Sprintf("%s -> %s", s.State, to)))
	}

	s.History = append(s.History, Transition{From: s.State, To: to, At: now})
	s.State = to
	if to.IsTerminal() {
		s.FinishedAt = now
	}
	return nil
}

// Fail moves to failed and records the stage failure. The first failure
// wins. It returns the stage error for the caller to surface.
func (s *Settlement) Fail(stage Stage, code apperror.Code, cause error, now time.Time) *apperror.AppError {
	appErr := apperror.Stage(code, string(stage), cause)
	if s.Failure == nil {
		s.Failure = &StageFailure{Stage: stage, Code: code, Err: appErr}
	}

	if !s.State.IsTerminal() {
		s.History = append(s.History, Transition{From: s.State, To: StateFailed, At: now})
		s.State = StateFailed
		s.FinishedAt = now
	}
	return appErr
}

// Succeeded reports whether the settlement was executed.
func (s *Settlement) Succeeded() bool {
	return s.State == StateExecuted
}

// Failed reports whether the settlement ended in failure.
func (s *Settlement) Failed() bool {
	return s.State == StateFailed
}

// Err returns the failure, nil unless Failed.
func (s *Settlement) Err() error {
	if s.Failure == nil {
		return nil
	}
	return s.Failure
}

// Duration is the time from start to finish, or zero while running.
func (s *Settlement) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// Visited reports whether the attempt passed through state.
func (s *Settlement) Visited(state State) bool {
	for _, t := range s.History {
		if t.To == state {
			return true
		}
	}
	return false
}
