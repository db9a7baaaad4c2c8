package asset

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

var (
	ErrNilToken        = errors.New("asset: nil token")
	ErrNonPositive     = errors.New("asset: amount must be positive")
	ErrTooManyDecimals = errors.New("asset: more decimal places than the token supports")
)

// Amount is an exact quantity of a token in base units.
type Amount struct {
	raw   *big.Int
	token *Token
}

// NewAmount copies raw, which is in base units. A nil raw is zero.
func NewAmount(token *Token, raw *big.Int) Amount {
	a := Amount{raw: new(big.Int), token: token}
	if raw != nil {
		a.raw.Set(raw)
	}
	return a
}

// ParseString parses operator input such as "0.1" into base units. Only
// positive amounts the token can represent exactly are accepted.
func ParseString(token *Token, s string) (Amount, error) {
	if token == nil {
		return Amount{}, ErrNilToken
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("asset: invalid amount %q: %w", s, err)
	}
	if !d.IsPositive() {
		return Amount{}, fmt.Errorf("%w: %s", ErrNonPositive, s)
	}

	scaled := d.Shift(int32(token.Decimals()))
	if !scaled.Equal(scaled.Truncate(0)) {
		return Amount{}, fmt.Errorf("%w: %s has %d", ErrTooManyDecimals, token.Symbol(), token.Decimals())
	}
	return NewAmount(token, scaled.BigInt()), nil
}

// Raw returns a copy of the base-unit value.
func (a Amount) Raw() *big.Int {
	if a.raw == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(a.raw)
}

func (a Amount) Token() *Token { return a.token }

// Decimal converts to token units.
func (a Amount) Decimal() decimal.Decimal {
	if a.raw == nil || a.token == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(a.raw, -int32(a.token.Decimals()))
}

// String renders e.g. "0.1 WETH".
func (a Amount) String() string {
	if a.token == nil {
		return a.Raw().String()
	}
	return a.Decimal().String() + " " + a.token.Symbol()
}
