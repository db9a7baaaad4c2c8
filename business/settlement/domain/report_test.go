package domain

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"

	quoteDomain "github.com/fd1az/swap-settler/business/quote/domain"
)

func fills(bps ...quoteDomain.Bps) []quoteDomain.Fill {
	out := make([]quoteDomain.Fill, len(bps))
	for i, b := range bps {
		out[i] = quoteDomain.Fill{Source: string(rune('A' + i)), ProportionBps: b}
	}
	return out
}

func TestLiquidityBreakdown_PreservesOrder(t *testing.T) {
	got := LiquidityBreakdown([]quoteDomain.Fill{
		{Source: "Uniswap_V3", ProportionBps: 2500},
		{Source: "Ambient", ProportionBps: 7000},
		{Source: "Curve", ProportionBps: 500},
	})

	want := []struct {
		source  string
		percent string
	}{
		{"Uniswap_V3", "25.00"},
		{"Ambient", "70.00"},
		{"Curve", "5.00"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d shares, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].Source != w.source || got[i].Percent.StringFixed(2) != w.percent {
			t.Errorf("share %d = %s %s, want %s %s", i, got[i].Source, got[i].Percent.StringFixed(2), w.source, w.percent)
		}
	}
}

func TestLiquidityBreakdown_SumsToHundred(t *testing.T) {
	tolerance := decimal.RequireFromString("0.01")
	hundred := decimal.NewFromInt(100)
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 200; i++ {
		n := 1 + rng.Intn(6)
		bps := make([]quoteDomain.Bps, n)
		remaining := 10000
		for j := 0; j < n-1; j++ {
			v := rng.Intn(remaining + 1)
			bps[j] = quoteDomain.Bps(v)
			remaining -= v
		}
		bps[n-1] = quoteDomain.Bps(remaining)

		total := TotalPercent(LiquidityBreakdown(fills(bps...)))
		if total.Sub(hundred).Abs().GreaterThan(tolerance) {
			t.Fatalf("bps %v sum to %s%%", bps, total)
		}
	}
}

func TestLiquidityBreakdown_Empty(t *testing.T) {
	if got := LiquidityBreakdown(nil); len(got) != 0 {
		t.Errorf("expected no shares, got %v", got)
	}
}

func TestTaxBreakdown(t *testing.T) {
	tests := []struct {
		name     string
		meta     *quoteDomain.TokenMetadata
		wantLegs []string
	}{
		{name: "nil metadata", meta: nil},
		{name: "no taxes", meta: &quoteDomain.TokenMetadata{}},
		{
			name: "buy token taxed on sell only",
			meta: &quoteDomain.TokenMetadata{
				BuyToken: quoteDomain.TokenTax{SellTaxBps: 300},
			},
			wantLegs: []string{LegBuyToken},
		},
		{
			name: "both legs taxed",
			meta: &quoteDomain.TokenMetadata{
				BuyToken:  quoteDomain.TokenTax{BuyTaxBps: 100},
				SellToken: quoteDomain.TokenTax{SellTaxBps: 50},
			},
			wantLegs: []string{LegBuyToken, LegSellToken},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TaxBreakdown(tt.meta)
			if len(got) != len(tt.wantLegs) {
				t.Fatalf("expected legs %v, got %+v", tt.wantLegs, got)
			}
			for i, leg := range tt.wantLegs {
				if got[i].Leg != leg {
					t.Errorf("leg %d = %q, want %q", i, got[i].Leg, leg)
				}
			}
		})
	}
}

func TestTaxBreakdown_Percentages(t *testing.T) {
	got := TaxBreakdown(&quoteDomain.TokenMetadata{
		SellToken: quoteDomain.TokenTax{BuyTaxBps: 125, SellTaxBps: 0},
	})
	if len(got) != 1 {
		t.Fatalf("expected one leg, got %d", len(got))
	}
	if got[0].BuyTaxPercent.StringFixed(2) != "1.25" || got[0].SellTaxPercent.StringFixed(2) != "0.00" {
		t.Errorf("unexpected percentages %+v", got[0])
	}
}

func TestTaxBreakdown_OmitsZeroLegs(t *testing.T) {
	values := []quoteDomain.Bps{0, 1, 250, 10000}
	for _, bb := range values {
		for _, bs := range values {
			for _, sb := range values {
				for _, ss := range values {
					meta := &quoteDomain.TokenMetadata{
						BuyToken:  quoteDomain.TokenTax{BuyTaxBps: bb, SellTaxBps: bs},
						SellToken: quoteDomain.TokenTax{BuyTaxBps: sb, SellTaxBps: ss},
					}
					for _, leg := range TaxBreakdown(meta) {
						if leg.BuyTaxPercent.IsZero() && leg.SellTaxPercent.IsZero() {
							t.Fatalf("leg %q reported with zero taxes for %+v", leg.Leg, meta)
						}
					}
					wantLegs := 0
					if bb > 0 || bs > 0 {
						wantLegs++
					}
					if sb > 0 || ss > 0 {
						wantLegs++
					}
					if got := len(TaxBreakdown(meta)); got != wantLegs {
						t.Fatalf("expected %d legs for %+v, got %d", wantLegs, meta, got)
					}
				}
			}
		}
	}
}

func TestMonetizationSummary_Surplus(t *testing.T) {
	tests := []struct {
		name    string
		surplus quoteDomain.NumericString
		want    string
	}{
		{name: "absent", surplus: "", want: ""},
		{name: "zero", surplus: "0", want: ""},
		{name: "negative", surplus: "-5", want: ""},
		{name: "not a number", surplus: "n/a", want: ""},
		{name: "positive verbatim", surplus: "150", want: "150"},
		{name: "positive decimal verbatim", surplus: "0.000150", want: "0.000150"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonetizationSummary(&quoteDomain.ExecutableQuote{TradeSurplus: tt.surplus})
			if got.TradeSurplus != tt.want {
				t.Errorf("surplus = %q, want %q", got.TradeSurplus, tt.want)
			}
		})
	}
}

func TestMonetizationSummary_AffiliateFee(t *testing.T) {
	none := MonetizationSummary(&quoteDomain.ExecutableQuote{})
	if none.AffiliateFeePercent != nil {
		t.Error("expected no fee when the quote carries none")
	}

	fee := quoteDomain.Bps(100)
	got := MonetizationSummary(&quoteDomain.ExecutableQuote{AffiliateFeeBps: &fee})
	if got.AffiliateFeePercent == nil || got.AffiliateFeePercent.StringFixed(2) != "1.00" {
		t.Errorf("expected 1.00%%, got %v", got.AffiliateFeePercent)
	}

	if MonetizationSummary(nil) != (Monetization{}) {
		t.Error("nil quote must give an empty summary")
	}
}

func TestBuildReport(t *testing.T) {
	fee := quoteDomain.Bps(100)
	q := &quoteDomain.ExecutableQuote{
		Route:           quoteDomain.Route{Fills: fills(6000, 4000)},
		TokenMetadata:   &quoteDomain.TokenMetadata{BuyToken: quoteDomain.TokenTax{BuyTaxBps: 10}},
		AffiliateFeeBps: &fee,
		TradeSurplus:    "150",
	}

	r := BuildReport(q)
	if len(r.Liquidity) != 2 || len(r.Taxes) != 1 || r.Monetization.TradeSurplus != "150" {
		t.Errorf("unexpected report %+v", r)
	}
}
