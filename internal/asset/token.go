// Package asset models ERC20 tokens on the settlement chain and exact
// amounts of them. Amounts are big.Int in base units; decimal.Decimal is
// used only when parsing operator input and rendering output.
package asset

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// maxDecimals bounds what a token may report before we refuse it.
const maxDecimals = 36

// TokenID identifies a token by chain and contract address.
type TokenID struct {
	ChainID uint64
	Address common.Address
}

func (id TokenID) String() string {
	return fmt.Sprintf("%d:%s", id.ChainID, id.Address.Hex())
}

// Token is display metadata for a TokenID. The symbol is not identity.
type Token struct {
	id       TokenID
	symbol   string
	decimals uint8
}

// NewToken panics on a zero address, an empty symbol or implausible
// decimals. Use it for constants and values already validated.
func NewToken(chainID uint64, address common.Address, symbol string, decimals uint8) *Token {
	t, err := newToken(chainID, address, symbol, decimals)
	if err != nil {
		panic(err)
	}
	return t
}

func newToken(chainID uint64, address common.Address, symbol string, decimals uint8) (*Token, error) {
	switch {
	case address == (common.Address{}):
		return nil, fmt.Errorf("asset: token address is zero")
	case symbol == "":
		return nil, fmt.Errorf("asset: empty symbol for %s", address.Hex())
	case decimals > maxDecimals:
		return nil, fmt.Errorf("asset: %s reports %d decimals", address.Hex(), decimals)
	}
	return &Token{
		id:       TokenID{ChainID: chainID, Address: address},
		symbol:   symbol,
		decimals: decimals,
	}, nil
}

func (t *Token) ID() TokenID { return t.id }
func (t *Token) ChainID() uint64 { return t.id.ChainID }
func (t *Token) Address() common.Address { return t.id.Address }
func (t *Token) Symbol() string { return t.symbol }
func (t *Token) Decimals() uint8 { return t.decimals }
func (t *Token) String() string { return t.symbol }

// ShortAddress renders 0x1234..abcd, the symbol used for unknown tokens.
func ShortAddress(address common.Address) string {
	hex := address.Hex()
	return hex[:6] + ".." + hex[len(hex)-4:]
}
