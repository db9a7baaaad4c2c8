// Package app defines the ports of the quote context.
package app

import (
	"context"

	"github.com/fd1az/swap-settler/business/quote/domain"
)

// QuoteService talks to the swap aggregator. It decodes responses and
// classifies failures but performs no business validation and never retries.
type QuoteService interface {
	// GetPrice fetches a non-binding price for intent.
	GetPrice(ctx context.Context, intent domain.TradeIntent) (*domain.PriceQuote, error)

	// GetQuote fetches a binding quote for intent.
	GetQuote(ctx context.Context, intent domain.TradeIntent) (*domain.ExecutableQuote, error)

	// Execute submits intent with signature, empty when the quote needed none.
	Execute(ctx context.Context, intent domain.TradeIntent, signature string) (*domain.Execution, error)

	// ListLiquiditySources returns the sorted source names available on chainID.
	ListLiquiditySources(ctx context.Context, chainID uint64) ([]string, error)
}
