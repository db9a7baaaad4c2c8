// Package main is the entry point for the swap settler CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/fd1az/swap-settler/business/settlement/domain"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		// The reporter already printed the stage failure.
		if !isStageFailure(err) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func isStageFailure(err error) bool {
	var failure *domain.StageFailure
	return errors.As(err, &failure)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "settler",
		Short:         "Settle 0x permit2 swaps: price, allowance, quote, sign, execute",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-file", "", "also write logs to this rotated file")
	root.PersistentFlags().String("rpc-url", "", "chain RPC URL")

	root.AddCommand(newSwapCmd(), newSourcesCmd(), newAllowanceCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "settler %s (commit: %s, built: %s)\n", version, commit, buildDate)
		},
	}
}
