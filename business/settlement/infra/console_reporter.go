// Package infra contains infrastructure adapters for the settlement context.
package infra

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fd1az/swap-settler/business/settlement/domain"
)

const rule = "================================================================================"

// ConsoleReporter implements Reporter for CLI output.
type ConsoleReporter struct {
	mu    sync.Mutex
	out   io.Writer
	txURL func(hash string) string
}

// NewConsoleReporter creates a ConsoleReporter writing to out, stdout when nil.
// txURL renders the explorer link of a transaction hash.
func NewConsoleReporter(out io.Writer, txURL func(hash string) string) *ConsoleReporter {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleReporter{out: out, txURL: txURL}
}

// Start initializes the console reporter.
func (r *ConsoleReporter) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintln(r.out, "Swap Settler Started")
	fmt.Fprintln(r.out, "====================")
	return nil
}

// StageChanged prints one line per transition.
func (r *ConsoleReporter) StageChanged(s *domain.Settlement, from, to domain.State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.out, "[%s] %s -> %s\n", time.Now().Format("15:04:05"), from, to)
}

// ReportQuote prints the transparency report.
func (r *ConsoleReporter) ReportQuote(s *domain.Settlement, report domain.Report) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, rule)
	fmt.Fprintln(r.out, "QUOTE")
	fmt.Fprintln(r.out, rule)
	fmt.Fprintf(r.out, "Settlement:     %s\n", s.ID)
	if s.Quote != nil {
		fmt.Fprintf(r.out, "Buy amount:     %s\n", s.Quote.BuyAmount)
		fmt.Fprintf(r.out, "Min buy amount: %s\n", s.Quote.MinBuyAmount)
	}

	fmt.Fprintln(r.out, strings.Repeat("-", len(rule)))
	fmt.Fprintln(r.out, "LIQUIDITY SOURCES")
	if len(report.Liquidity) == 0 {
		fmt.Fprintln(r.out, "  none reported")
	}
	for _, share := range report.Liquidity {
		fmt.Fprintf(r.out, "  %-20s %s%%\n", share.Source+":", share.Percent.StringFixed(2))
	}

	if len(report.Taxes) > 0 {
		fmt.Fprintln(r.out, strings.Repeat("-", len(rule)))
		fmt.Fprintln(r.out, "TOKEN TAXES")
		for _, leg := range report.Taxes {
			fmt.Fprintf(r.out, "  %-20s buy %s%%, sell %s%%\n",
				leg.Leg+":", leg.BuyTaxPercent.StringFixed(2), leg.SellTaxPercent.StringFixed(2))
		}
	}

	fmt.Fprintln(r.out, strings.Repeat("-", len(rule)))
	fmt.Fprintln(r.out, "MONETIZATION")
	if fee := report.Monetization.AffiliateFeePercent; fee != nil {
		fmt.Fprintf(r.out, "  Affiliate fee:      %s%%\n", fee.StringFixed(2))
	}
	if surplus := report.Monetization.TradeSurplus; surplus != "" {
		fmt.Fprintf(r.out, "  Trade surplus:      %s\n", surplus)
	}
	fmt.Fprintln(r.out, rule)
}

// Finished prints the outcome.
func (r *ConsoleReporter) Finished(s *domain.Settlement) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintln(r.out, "")
	if s.Failure != nil {
		fmt.Fprintln(r.out, s.Failure.Error())
		return
	}

	hash := s.TxHash.Hex()
	fmt.Fprintln(r.out, "SETTLEMENT EXECUTED")
	fmt.Fprintf(r.out, "Tx hash:        %s\n", hash)
	if r.txURL != nil {
		fmt.Fprintf(r.out, "Explorer:       %s\n", r.txURL(hash))
	}
	fmt.Fprintf(r.out, "Duration:       %s\n", s.Duration().Round(time.Millisecond))
}

// Stop gracefully shuts down the console reporter.
func (r *ConsoleReporter) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "Swap Settler Stopped")
	return nil
}
