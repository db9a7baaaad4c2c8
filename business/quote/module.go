// Package quote implements the quote bounded context backed by the 0x Swap API.
package quote

import (
	"context"

	"github.com/fd1az/swap-settler/business/quote/app"
	quoteDI "github.com/fd1az/swap-settler/business/quote/di"
	"github.com/fd1az/swap-settler/business/quote/infra/zeroex"
	"github.com/fd1az/swap-settler/internal/config"
	"github.com/fd1az/swap-settler/internal/di"
	"github.com/fd1az/swap-settler/internal/logger"
	"github.com/fd1az/swap-settler/internal/monolith"
)

// Module implements the quote bounded context.
type Module struct{}

// RegisterServices registers the quote service with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, quoteDI.QuoteService, func(sr di.ServiceRegistry) app.QuoteService {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		client, err := zeroex.NewClient(zeroex.Config{
			BaseURL:           cfg.ZeroEx.BaseURL,
			APIKey:            cfg.ZeroEx.APIKey,
			Version:           cfg.ZeroEx.Version,
			Timeout:           cfg.ZeroEx.Timeout,
			RequestsPerMinute: cfg.ZeroEx.RequestsPerMinute,
			SourcesCacheTTL:   cfg.ZeroEx.SourcesCacheTTL,
		}, log)
		if err != nil {
			panic("failed to create 0x client: " + err.Error())
		}
		return client
	})

	return nil
}

// Startup initializes the quote module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	// Resolve eagerly so a broken client fails at startup, not mid settlement.
	quoteDI.GetQuoteService(mono.Services())

	mono.Logger().Info(ctx, "quote module started", "base_url", mono.Config().ZeroEx.BaseURL)
	return nil
}
