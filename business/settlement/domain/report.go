package domain

import (
	"github.com/shopspring/decimal"

	quoteDomain "github.com/fd1az/swap-settler/business/quote/domain"
)

const (
	LegBuyToken  = "buy token"
	LegSellToken = "sell token"
)

// SourceShare is one liquidity source's share of the route, in percent.
type SourceShare struct {
	Source  string          `json:"source"`
	Percent decimal.Decimal `json:"percent"`
}

// LegTax is the transfer tax of one token leg, in percent.
type LegTax struct {
	Leg            string          `json:"leg"`
	BuyTaxPercent  decimal.Decimal `json:"buyTaxPercent"`
	SellTaxPercent decimal.Decimal `json:"sellTaxPercent"`
}

// Monetization summarises what the integrator earns on the trade.
// AffiliateFeePercent is nil when the quote carries no fee; TradeSurplus is
// empty unless strictly positive.
type Monetization struct {
	AffiliateFeePercent *decimal.Decimal `json:"affiliateFeePercent,omitempty"`
	TradeSurplus        string           `json:"tradeSurplus,omitempty"`
}

// Report is the transparency data shown before signing.
type Report struct {
	Liquidity    []SourceShare `json:"liquidity"`
	Taxes        []LegTax      `json:"taxes"`
	Monetization Monetization  `json:"monetization"`
}

// LiquidityBreakdown converts fill proportions to percentages with two
// decimals, keeping the aggregator's order.
func LiquidityBreakdown(fills []quoteDomain.Fill) []SourceShare {
	shares := make([]SourceShare, 0, len(fills))
	for _, f := range fills {
		shares = append(shares, SourceShare{
			Source:  f.Source,
			Percent: f.ProportionBps.Percent().Round(2),
		})
	}
	return shares
}

// TotalPercent sums the shares. Informational only.
func TotalPercent(shares []SourceShare) decimal.Decimal {
	total := decimal.Zero
	for _, s := range shares {
		total = total.Add(s.Percent)
	}
	return total
}

// TaxBreakdown lists the buy token leg then the sell token leg, omitting a
// leg whose buy and sell taxes are both zero.
func TaxBreakdown(meta *quoteDomain.TokenMetadata) []LegTax {
	if meta == nil {
		return nil
	}

	var legs []LegTax
	for _, leg := range []struct {
		label string
		tax   quoteDomain.TokenTax
	}{
		{LegBuyToken, meta.BuyToken},
		{LegSellToken, meta.SellToken},
	} {
		if leg.tax.BuyTaxBps == 0 && leg.tax.SellTaxBps == 0 {
			continue
		}
		legs = append(legs, LegTax{
			Leg:            leg.label,
			BuyTaxPercent:  leg.tax.BuyTaxBps.Percent().Round(2),
			SellTaxPercent: leg.tax.SellTaxBps.Percent().Round(2),
		})
	}
	return legs
}

// MonetizationSummary extracts the affiliate fee and a positive trade surplus.
func MonetizationSummary(q *quoteDomain.ExecutableQuote) Monetization {
	var m Monetization
	if q == nil {
		return m
	}

	if q.AffiliateFeeBps != nil {
		pct := q.AffiliateFeeBps.Percent().Round(2)
		m.AffiliateFeePercent = &pct
	}

	if surplus, ok := q.TradeSurplus.Decimal(); ok && surplus.IsPositive() {
		m.TradeSurplus = q.TradeSurplus.String()
	}
	return m
}

// BuildReport derives the full transparency report from a quote.
func BuildReport(q *quoteDomain.ExecutableQuote) Report {
	if q == nil {
		return Report{}
	}
	return Report{
		Liquidity:    LiquidityBreakdown(q.Route.Fills),
		Taxes:        TaxBreakdown(q.TokenMetadata),
		Monetization: MonetizationSummary(q),
	}
}
