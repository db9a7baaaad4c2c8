// Package di contains dependency injection tokens for the settlement context.
package di

import (
	"github.com/fd1az/swap-settler/business/settlement/app"
	"github.com/fd1az/swap-settler/internal/di"
)

// Public service tokens
var (
	Orchestrator = di.NewToken[*app.Orchestrator]("settlement.Orchestrator")
	Reporter     = di.NewToken[app.Reporter]("settlement.Reporter")
	Journal      = di.NewToken[app.Journal]("settlement.Journal")
)

// Private service tokens
var (
	Executor = di.NewToken[app.Executor]("settlement.Executor")
)

func GetOrchestrator(c di.ServiceRegistry) *app.Orchestrator {
	return di.GetToken(c, Orchestrator)
}

func GetReporter(c di.ServiceRegistry) app.Reporter {
	return di.GetToken(c, Reporter)
}

func GetJournal(c di.ServiceRegistry) app.Journal {
	return di.GetToken(c, Journal)
}

func GetExecutor(c di.ServiceRegistry) app.Executor {
	return di.GetToken(c, Executor)
}
