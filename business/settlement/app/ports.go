// Package app contains the settlement orchestrator and its ports.
package app

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	blockchainDomain "github.com/fd1az/swap-settler/business/blockchain/domain"
	quoteDomain "github.com/fd1az/swap-settler/business/quote/domain"
	"github.com/fd1az/swap-settler/business/settlement/domain"
)

// Reporter displays settlement progress. Methods return nothing: reporting
// never affects the outcome of a settlement.
type Reporter interface {
	// Start initializes the reporter.
	Start(ctx context.Context) error

	// StageChanged is called after every state change.
	StageChanged(s *domain.Settlement, from, to domain.State)

	// ReportQuote shows the transparency report once the quote is in.
	ReportQuote(s *domain.Settlement, report domain.Report)

	// Finished is called once with the terminal settlement.
	Finished(s *domain.Settlement)

	// Stop gracefully shuts down the reporter.
	Stop() error
}

// Journal persists finished settlements.
type Journal interface {
	Record(ctx context.Context, s *domain.Settlement) error
	Close() error
}

// Executor submits a quote with its signature, zero when none was needed.
type Executor interface {
	Execute(ctx context.Context, intent quoteDomain.TradeIntent, quote *quoteDomain.ExecutableQuote, sig blockchainDomain.Signature) (common.Hash, error)
}
