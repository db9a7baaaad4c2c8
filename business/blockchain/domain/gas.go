// Package domain contains the core domain types for the blockchain context.
package domain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// GasFees are EIP-1559 fee parameters for one transaction.
type GasFees struct {
	BaseFee   *big.Int
	TipCap    *big.Int
	FeeCap    *big.Int
	Timestamp time.Time
}

// NewGasFees derives the fee cap as twice the base fee plus the tip, so the
// transaction stays valid through a few full blocks.
func NewGasFees(baseFee, tipCap *big.Int) *GasFees {
	base := new(big.Int)
	if baseFee != nil {
		base.Set(baseFee)
	}
	tip := new(big.Int)
	if tipCap != nil {
		tip.Set(tipCap)
	}

	feeCap := new(big.Int).Mul(base, big.NewInt(2))
	feeCap.Add(feeCap, tip)

	return &GasFees{
		BaseFee:   base,
		TipCap:    tip,
		FeeCap:    feeCap,
		Timestamp: time.Now(),
	}
}

// CapFeeCap lowers the fee cap, and the tip with it, to max. A nil or
// non-positive max leaves the fees unchanged.
func (g *GasFees) CapFeeCap(max *big.Int) bool {
	if max == nil || max.Sign() <= 0 || g.FeeCap.Cmp(max) <= 0 {
		return false
	}
	g.FeeCap = new(big.Int).Set(max)
	if g.TipCap.Cmp(max) > 0 {
		g.TipCap = new(big.Int).Set(max)
	}
	return true
}

// FeeCapGwei returns the fee cap in gwei.
func (g *GasFees) FeeCapGwei() float64 {
	return WeiToGwei(g.FeeCap)
}

// WeiToGwei converts wei to gwei.
func WeiToGwei(wei *big.Int) float64 {
	if wei == nil {
		return 0
	}
	f, _ := decimal.NewFromBigInt(wei, -9).Float64()
	return f
}

// GweiToWei converts gwei to wei, truncating below one wei.
func GweiToWei(gwei float64) *big.Int {
	return decimal.NewFromFloat(gwei).Shift(9).BigInt()
}

// WithMargin adds pct percent to gas.
func WithMargin(gas, pct uint64) uint64 {
	return gas + gas*pct/100
}

// TxRequest is a transaction for the configured account to sign and send.
// A zero Gas asks the sender to estimate it.
type TxRequest struct {
	To    *common.Address
	Data  []byte
	Value *big.Int
	Gas   uint64
}
