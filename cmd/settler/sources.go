package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fd1az/swap-settler/business/quote"
	quoteDI "github.com/fd1az/swap-settler/business/quote/di"
)

func newSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the aggregator's liquidity sources on the configured chain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := bootstrap(cmd, false)
			if err != nil {
				return err
			}
			defer rt.shutdown()

			module := &quote.Module{}
			if err := rt.app.RegisterModules(module); err != nil {
				return fmt.Errorf("failed to register modules: %w", err)
			}
			if err := rt.app.StartModules(cmd.Context(), module); err != nil {
				return fmt.Errorf("failed to start modules: %w", err)
			}

			chainID := rt.cfg.Chain.ChainID
			sources, err := quoteDI.GetQuoteService(rt.app.Services()).ListLiquiditySources(cmd.Context(), chainID)
			if err != nil {
				return fmt.Errorf("list liquidity sources: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Liquidity sources on chain %d (%d):\n", chainID, len(sources))
			for _, name := range sources {
				fmt.Fprintf(out, "  %s\n", name)
			}
			return nil
		},
	}
}
