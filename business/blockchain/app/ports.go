// Package app contains the port definitions for the blockchain context.
package app

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/fd1az/swap-settler/business/blockchain/domain"
)

// AllowanceManager reads and bootstraps ERC20 allowances.
type AllowanceManager interface {
	// CheckAllowance reads the allowance owner granted spender on token.
	CheckAllowance(ctx context.Context, owner, token, spender common.Address) (*domain.AllowanceState, error)

	// EnsureAllowance approves the maximum amount when the current allowance
	// is below minAmount and waits for the receipt. A covered allowance
	// returns a skipped receipt without sending anything.
	EnsureAllowance(ctx context.Context, owner, token, spender common.Address, minAmount *big.Int) (*domain.ApprovalReceipt, error)
}

// Signer produces EIP-712 signatures for the trading account.
type Signer interface {
	Account() common.Address
	Sign(ctx context.Context, payload apitypes.TypedData) (domain.Signature, error)
}

// TokenReader reads ERC20 metadata.
type TokenReader interface {
	Decimals(ctx context.Context, token common.Address) (uint8, error)
}

// GasOracle supplies fees and gas limits.
type GasOracle interface {
	// GetFees returns EIP-1559 fees for the next block.
	GetFees(ctx context.Context) (*domain.GasFees, error)

	// EstimateGas estimates msg and adds the configured safety margin.
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
}

// TransactionSender signs and broadcasts transactions from the trading account.
type TransactionSender interface {
	Account() common.Address
	Send(ctx context.Context, req domain.TxRequest) (common.Hash, error)
}

// ReceiptWaiter blocks until a transaction is mined.
type ReceiptWaiter interface {
	WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}
