package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"

	"github.com/shopspring/decimal"
)

// NumericString holds a number the aggregator may send as a JSON string or
// number, kept verbatim.
type NumericString string

func (n *NumericString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumericString(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("numeric value: %w", err)
	}
	*n = NumericString(num.String())
	return nil
}

func (n NumericString) String() string {
	return string(n)
}

// Decimal parses the value. Empty or malformed values are reported as not ok.
func (n NumericString) Decimal() (decimal.Decimal, bool) {
	if n == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(string(n))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Big parses an integer value.
func (n NumericString) Big() (*big.Int, bool) {
	if n == "" {
		return nil, false
	}
	return new(big.Int).SetString(string(n), 0)
}

// Bps is a basis-point count the aggregator sends as string or number.
type Bps uint32

func (b *Bps) UnmarshalJSON(data []byte) error {
	var n NumericString
	if err := n.UnmarshalJSON(data); err != nil {
		return err
	}
	if n == "" {
		*b = 0
		return nil
	}
	v, err := strconv.ParseUint(string(n), 10, 32)
	if err != nil {
		return fmt.Errorf("basis points %q: %w", n, err)
	}
	*b = Bps(v)
	return nil
}

// Percent converts to a percentage: 150 bps is 1.5.
func (b Bps) Percent() decimal.Decimal {
	return decimal.New(int64(b), -2)
}
