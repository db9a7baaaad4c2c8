package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/fd1az/swap-settler/business/blockchain"
	blockchainDI "github.com/fd1az/swap-settler/business/blockchain/di"
	"github.com/fd1az/swap-settler/business/quote"
	quoteDI "github.com/fd1az/swap-settler/business/quote/di"
	quoteDomain "github.com/fd1az/swap-settler/business/quote/domain"
	"github.com/fd1az/swap-settler/business/settlement"
	settlementApp "github.com/fd1az/swap-settler/business/settlement/app"
	settlementDI "github.com/fd1az/swap-settler/business/settlement/di"
	"github.com/fd1az/swap-settler/business/settlement/domain"
	"github.com/fd1az/swap-settler/business/settlement/infra"
	"github.com/fd1az/swap-settler/internal/asset"
	"github.com/fd1az/swap-settler/internal/monolith"
	"github.com/fd1az/swap-settler/pkg/ui"
)

func newSwapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swap",
		Short: "Run one settlement of the configured trade",
		Long: `Lists liquidity sources, reads the sell token decimals, then runs
price, allowance, quote, sign and execute. Exits non-zero on any failure.`,
		Args: cobra.NoArgs,
		RunE: runSwap,
	}

	cmd.Flags().Bool("cli", false, "plain console output instead of the TUI")
	cmd.Flags().String("sell-token", "", "sell token address")
	cmd.Flags().String("buy-token", "", "buy token address")
	cmd.Flags().String("sell-amount", "", "sell amount in token units, e.g. 0.1")
	cmd.Flags().String("execution-mode", "", "api or onchain")
	cmd.Flags().String("journal", "", "settlement journal: none, jsonl or postgres")
	cmd.Flags().String("journal-path", "", "JSONL journal file")
	cmd.Flags().Bool("telemetry", false, "enable tracing and metrics")
	return cmd
}

// programSender forwards reporter messages to the running TUI program.
type programSender struct{}

func (programSender) Send(msg tea.Msg) { ui.Send(msg) }

func runSwap(cmd *cobra.Command, _ []string) error {
	cliMode, _ := cmd.Flags().GetBool("cli")
	tuiMode := !cliMode

	rt, err := bootstrap(cmd, tuiMode)
	if err != nil {
		return err
	}
	defer rt.shutdown()

	var reporter settlementApp.Reporter
	if tuiMode {
		reporter = infra.NewTUIReporter(programSender{}, rt.cfg.Chain.TxURL)
	} else {
		reporter = infra.NewConsoleReporter(cmd.OutOrStdout(), rt.cfg.Chain.TxURL)
	}

	modules := []monolith.Module{
		&blockchain.Module{},
		&quote.Module{},
		&settlement.Module{Reporter: reporter},
	}
	if err := rt.app.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}

	ctx := cmd.Context()
	var result *domain.Settlement
	settle := func() error {
		if err := rt.app.StartModules(ctx, modules...); err != nil {
			return fmt.Errorf("failed to start modules: %w", err)
		}
		s, err := settleOnce(ctx, rt, tuiMode, cmd)
		result = s
		return err
	}

	if !tuiMode {
		return settle()
	}

	err = runTUI(ctx, settle, cmd.ErrOrStderr())
	// The dashboard is gone with the alt screen; repeat the outcome on the terminal.
	if result != nil {
		infra.NewConsoleReporter(cmd.OutOrStdout(), rt.cfg.Chain.TxURL).Finished(result)
	}
	return err
}

// settleOnce runs the configured trade through the orchestrator. The
// settlement is nil when the attempt never reached the orchestrator.
func settleOnce(ctx context.Context, rt *runtime, tuiMode bool, cmd *cobra.Command) (*domain.Settlement, error) {
	cfg := rt.cfg
	services := rt.app.Services()

	sources, err := quoteDI.GetQuoteService(services).ListLiquiditySources(ctx, cfg.Chain.ChainID)
	if err != nil {
		return nil, fmt.Errorf("list liquidity sources: %w", err)
	}
	rt.log.Info(ctx, "liquidity sources", "chain_id", cfg.Chain.ChainID, "count", len(sources))
	if tuiMode {
		ui.Send(ui.LogMsg{Level: "info", Message: fmt.Sprintf("%d liquidity sources on chain %d", len(sources), cfg.Chain.ChainID)})
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Liquidity sources on chain %d: %d\n", cfg.Chain.ChainID, len(sources))
	}

	sellAsset, err := resolveToken(ctx, rt, cfg.Swap.SellTokenAddress())
	if err != nil {
		return nil, err
	}
	amount, err := asset.ParseString(sellAsset, cfg.Swap.SellAmount)
	if err != nil {
		return nil, fmt.Errorf("parse sell amount %q: %w", cfg.Swap.SellAmount, err)
	}

	intent := quoteDomain.NewTradeIntent(
		cfg.Chain.ChainID,
		cfg.Swap.SellTokenAddress(),
		cfg.Swap.BuyTokenAddress(),
		amount.Raw(),
		blockchainDI.GetSigner(services).Account(),
		cfg.Swap.AffiliateFeeBps,
		cfg.Swap.CollectSurplus,
	)

	if tuiMode {
		ui.Send(ui.StartedMsg{
			Pair: fmt.Sprintf("%s -> %s", sellAsset.Symbol(),
				rt.app.AssetRegistry().Symbol(cfg.Chain.ChainID, intent.BuyToken)),
			SellAmount: amount.String(),
			Mode:       cfg.Settlement.ExecutionMode,
		})
	}

	s, err := settlementDI.GetOrchestrator(services).Settle(ctx, intent)
	if err != nil {
		if s != nil && s.Failure != nil {
			return s, s.Failure
		}
		return s, err
	}
	return s, nil
}

// resolveToken returns the registered token, reading its decimals from
// chain when it is unknown.
func resolveToken(ctx context.Context, rt *runtime, token common.Address) (*asset.Token, error) {
	return rt.app.AssetRegistry().Resolve(ctx, rt.cfg.Chain.ChainID, token,
		blockchainDI.GetTokenReader(rt.app.Services()))
}

// runTUI shows the welcome screen, runs settle once it completes and keeps
// the dashboard up until the user quits.
func runTUI(ctx context.Context, settle func() error, notice io.Writer) error {
	startSignal := make(chan struct{}, 1)
	ui.OnStartModules = func() {
		select {
		case startSignal <- struct{}{}:
		default:
		}
	}

	p := tea.NewProgram(ui.New(), tea.WithAltScreen(), tea.WithContext(ctx))
	ui.Program = p

	run := func() error {
		_, err := p.Run()
		return err
	}
	return superviseTUI(ctx, run, startSignal, settle, notice)
}

// superviseTUI runs the program and, once the start signal arrives, settle
// in the background. A settlement that started is always waited for, even
// when the program exits first: funds may already be in flight.
func superviseTUI(ctx context.Context, run func() error, startSignal <-chan struct{}, settle func() error, notice io.Writer) error {
	var (
		mu     sync.Mutex
		exited bool
		begun  bool
	)
	done := make(chan struct{})
	errCh := make(chan error, 1)

	go func() {
		select {
		case <-startSignal:
		case <-done:
			return
		case <-ctx.Done():
			return
		}

		mu.Lock()
		if exited {
			mu.Unlock()
			return
		}
		begun = true
		mu.Unlock()

		err := settle()
		if err != nil && !isStageFailure(err) {
			ui.Send(ui.ErrorMsg{Error: err})
		}
		errCh <- err
	}()

	runErr := run()

	mu.Lock()
	exited = true
	inFlight := begun
	mu.Unlock()
	close(done)

	if inFlight {
		select {
		case err := <-errCh:
			return err
		default:
		}
		fmt.Fprintln(notice, "waiting for the settlement in flight to finish...")
		return <-errCh
	}

	if runErr != nil && ctx.Err() == nil {
		return fmt.Errorf("TUI error: %w", runErr)
	}
	return nil
}
