package main

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/spf13/cobra"

	"github.com/fd1az/swap-settler/business/blockchain"
	blockchainDI "github.com/fd1az/swap-settler/business/blockchain/di"
	"github.com/fd1az/swap-settler/internal/asset"
)

func newAllowanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "allowance",
		Short: "Show the allowance the trading account granted on the sell token",
		Args:  cobra.NoArgs,
		RunE:  runAllowance,
	}
	cmd.Flags().String("sell-token", "", "token to inspect, defaults to the configured sell token")
	cmd.Flags().String("spender", "", "spender address, defaults to Permit2")
	return cmd
}

func runAllowance(cmd *cobra.Command, _ []string) error {
	rt, err := bootstrap(cmd, false)
	if err != nil {
		return err
	}
	defer rt.shutdown()

	spender := rt.cfg.Chain.Permit2()
	if raw, _ := cmd.Flags().GetString("spender"); raw != "" {
		if !common.IsHexAddress(raw) {
			return fmt.Errorf("invalid spender address %q", raw)
		}
		spender = common.HexToAddress(raw)
	}

	module := &blockchain.Module{}
	if err := rt.app.RegisterModules(module); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}
	ctx := cmd.Context()
	if err := rt.app.StartModules(ctx, module); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	services := rt.app.Services()
	owner := blockchainDI.GetSigner(services).Account()
	token := rt.cfg.Swap.SellTokenAddress()

	state, err := blockchainDI.GetAllowanceManager(services).CheckAllowance(ctx, owner, token, spender)
	if err != nil {
		return fmt.Errorf("check allowance: %w", err)
	}

	tokenAsset, err := resolveToken(ctx, rt, token)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Owner:     %s\n", owner.Hex())
	fmt.Fprintf(out, "Token:     %s (%s)\n", tokenAsset.Symbol(), token.Hex())
	fmt.Fprintf(out, "Spender:   %s\n", spender.Hex())
	fmt.Fprintf(out, "Allowance: %s\n", formatAllowance(tokenAsset, state.Amount))
	fmt.Fprintf(out, "Block:     %d\n", state.BlockNumber)
	return nil
}

// formatAllowance renders an allowance in token units. A max approval is
// shown as unlimited.
func formatAllowance(token *asset.Token, raw *big.Int) string {
	if raw == nil {
		return "0"
	}
	if raw.Cmp(math.MaxBig256) == 0 {
		return "unlimited"
	}
	return asset.NewAmount(token, raw).String()
}
