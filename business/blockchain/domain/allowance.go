package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// AllowanceState is an ERC20 allowance read at a block.
type AllowanceState struct {
	Owner       common.Address
	Token       common.Address
	Spender     common.Address
	Amount      *big.Int
	BlockNumber uint64
}

// Covers reports whether the allowance is at least min.
func (a *AllowanceState) Covers(min *big.Int) bool {
	if a == nil || a.Amount == nil {
		return false
	}
	if min == nil {
		return true
	}
	return a.Amount.Cmp(min) >= 0
}

// ApprovalReceipt is the outcome of an allowance bootstrap. Skipped is set
// when the allowance already covered the amount and nothing was sent.
type ApprovalReceipt struct {
	TxHash      common.Hash
	BlockNumber uint64
	GasUsed     uint64
	Status      uint64
	Skipped     bool
}
