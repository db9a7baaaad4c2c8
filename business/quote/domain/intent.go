// Package domain contains the trade intent and the aggregator's price and quote payloads.
package domain

import (
	"fmt"
	"math/big"
	"net/url"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// MaxBps is 100%.
const MaxBps = 10000

// TradeIntent defines one settlement attempt. Treat it as immutable: every
// aggregator request of an attempt is rendered from the same value.
type TradeIntent struct {
	ChainID         uint64
	SellToken       common.Address
	BuyToken        common.Address
	SellAmount      *big.Int
	Taker           common.Address
	AffiliateFeeBps uint32
	CollectSurplus  bool
}

// NewTradeIntent copies sellAmount so later mutation by the caller cannot leak in.
func NewTradeIntent(chainID uint64, sellToken, buyToken common.Address, sellAmount *big.Int,
	taker common.Address, affiliateFeeBps uint32, collectSurplus bool,
) TradeIntent {
	var amount *big.Int
	if sellAmount != nil {
		amount = new(big.Int).Set(sellAmount)
	}
	return TradeIntent{
		ChainID:         chainID,
		SellToken:       sellToken,
		BuyToken:        buyToken,
		SellAmount:      amount,
		Taker:           taker,
		AffiliateFeeBps: affiliateFeeBps,
		CollectSurplus:  collectSurplus,
	}
}

// Validate rejects intents the aggregator would refuse or that would move funds nowhere.
func (t TradeIntent) Validate() error {
	var problems []string

	if t.ChainID == 0 {
		problems = append(problems, "chain id is zero")
	}
	if t.SellToken == (common.Address{}) {
		problems = append(problems, "sell token is the zero address")
	}
	if t.BuyToken == (common.Address{}) {
		problems = append(problems, "buy token is the zero address")
	}
	if t.SellToken == t.BuyToken {
		problems = append(problems, "sell and buy token are the same")
	}
	if t.SellAmount == nil || t.SellAmount.Sign() <= 0 {
		problems = append(problems, "sell amount must be positive")
	}
	if t.Taker == (common.Address{}) {
		problems = append(problems, "taker is the zero address")
	}
	if t.AffiliateFeeBps > MaxBps {
		problems = append(problems, fmt.Sprintf("affiliate fee %d bps exceeds %d", t.AffiliateFeeBps, MaxBps))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid trade intent: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Params renders the query parameters shared by price, quote and execute.
func (t TradeIntent) Params() url.Values {
	v := url.Values{}
	v.Set("chainId", strconv.FormatUint(t.ChainID, 10))
	v.Set("sellToken", t.SellToken.Hex())
	v.Set("buyToken", t.BuyToken.Hex())
	if t.SellAmount != nil {
		v.Set("sellAmount", t.SellAmount.String())
	}
	v.Set("taker", t.Taker.Hex())
	v.Set("affiliateFee", strconv.FormatUint(uint64(t.AffiliateFeeBps), 10))
	v.Set("surplusCollection", strconv.FormatBool(t.CollectSurplus))
	return v
}

// PairKey identifies the (taker, sell, buy) triple that shares allowance state.
func (t TradeIntent) PairKey() string {
	return strings.ToLower(t.Taker.Hex() + ":" + t.SellToken.Hex() + ":" + t.BuyToken.Hex())
}
