// Package di contains dependency injection tokens for the quote context.
package di

import (
	"github.com/fd1az/swap-settler/business/quote/app"
	"github.com/fd1az/swap-settler/internal/di"
)

// Public service tokens
var (
	QuoteService = di.NewToken[app.QuoteService]("quote.QuoteService")
)

func GetQuoteService(c di.ServiceRegistry) app.QuoteService {
	return di.GetToken(c, QuoteService)
}
