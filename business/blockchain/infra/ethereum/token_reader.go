package ethereum

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/swap-settler/business/blockchain/app"
	"github.com/fd1az/swap-settler/internal/cache"
)

var _ app.TokenReader = (*TokenReader)(nil)

// decimals never change for a deployed token.
const decimalsTTL = 24 * time.Hour

// TokenReader reads ERC20 metadata with a cache in front.
type TokenReader struct {
	erc20    *ERC20
	decimals *cache.Cache[common.Address, uint8]
}

// NewTokenReader creates a TokenReader.
func NewTokenReader(erc20 *ERC20) *TokenReader {
	return &TokenReader{
		erc20:    erc20,
		decimals: cache.New[common.Address, uint8](0),
	}
}

// Decimals returns token's decimals.
func (r *TokenReader) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	if d, ok := r.decimals.Get(ctx, token); ok {
		return d, nil
	}

	d, err := r.erc20.Decimals(ctx, token)
	if err != nil {
		return 0, err
	}
	r.decimals.Set(ctx, token, d, decimalsTTL)
	return d, nil
}
