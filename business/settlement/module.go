// Package settlement implements the settlement bounded context: the
// orchestrated price, allowance, quote, sign and execute flow.
package settlement

import (
	"context"

	blockchainDI "github.com/fd1az/swap-settler/business/blockchain/di"
	quoteDI "github.com/fd1az/swap-settler/business/quote/di"
	"github.com/fd1az/swap-settler/business/settlement/app"
	settlementDI "github.com/fd1az/swap-settler/business/settlement/di"
	"github.com/fd1az/swap-settler/business/settlement/infra"
	"github.com/fd1az/swap-settler/internal/config"
	"github.com/fd1az/swap-settler/internal/di"
	"github.com/fd1az/swap-settler/internal/logger"
	"github.com/fd1az/swap-settler/internal/monolith"
)

// Module implements the settlement bounded context. Reporter is chosen by
// the caller (console or TUI); nil falls back to the console.
type Module struct {
	Reporter app.Reporter
}

// RegisterServices registers the orchestrator and its adapters with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, settlementDI.Reporter, func(sr di.ServiceRegistry) app.Reporter {
		if m.Reporter != nil {
			return m.Reporter
		}
		cfg := sr.Get("config").(*config.Config)
		return infra.NewConsoleReporter(nil, cfg.Chain.TxURL)
	})

	di.RegisterToken(c, settlementDI.Journal, func(sr di.ServiceRegistry) app.Journal {
		cfg := sr.Get("config").(*config.Config)

		switch cfg.Journal.Driver {
		case config.JournalJSONL:
			j, err := infra.NewJSONLJournal(cfg.Journal.Path)
			if err != nil {
				panic("failed to open settlement journal: " + err.Error())
			}
			return j
		case config.JournalPostgres:
			j, err := infra.NewPostgresJournal(context.Background(), cfg.Journal.DSN)
			if err != nil {
				panic("failed to connect settlement journal: " + err.Error())
			}
			return j
		default:
			return infra.NopJournal{}
		}
	})

	di.RegisterToken(c, settlementDI.Executor, func(sr di.ServiceRegistry) app.Executor {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		if cfg.Settlement.ExecutionMode == config.ExecutionModeOnchain {
			return infra.NewOnchainExecutor(blockchainDI.GetTransactionSender(sr), blockchainDI.GetReceiptWaiter(sr), log)
		}
		return infra.NewAPIExecutor(quoteDI.GetQuoteService(sr), log)
	})

	di.RegisterToken(c, settlementDI.Orchestrator, func(sr di.ServiceRegistry) *app.Orchestrator {
		log := sr.Get("logger").(logger.LoggerInterface)

		o, err := app.NewOrchestrator(app.Deps{
			Quotes:     quoteDI.GetQuoteService(sr),
			Allowances: blockchainDI.GetAllowanceManager(sr),
			Signer:     blockchainDI.GetSigner(sr),
			Executor:   settlementDI.GetExecutor(sr),
			Reporter:   settlementDI.GetReporter(sr),
			Journal:    settlementDI.GetJournal(sr),
		}, log)
		if err != nil {
			panic("failed to create orchestrator: " + err.Error())
		}
		return o
	})

	return nil
}

// Startup builds the orchestrator and starts the reporter. The journal and
// reporter are released when the application closes.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	services := mono.Services()
	settlementDI.GetOrchestrator(services)

	journal := settlementDI.GetJournal(services)
	mono.OnClose("settlement journal", journal.Close)

	reporter := settlementDI.GetReporter(services)
	if err := reporter.Start(ctx); err != nil {
		return err
	}
	mono.OnClose("settlement reporter", reporter.Stop)

	cfg := mono.Config()
	mono.Logger().Info(ctx, "settlement module started",
		"execution_mode", cfg.Settlement.ExecutionMode,
		"journal", cfg.Journal.Driver)
	return nil
}
