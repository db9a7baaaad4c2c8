package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/swap-settler/internal/apperror"
	"github.com/fd1az/swap-settler/internal/circuitbreaker"
)

const erc20ABI = `[
	{"constant":true,"inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"constant":false,"inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"}
]`

var parsedERC20 = mustParseABI(erc20ABI)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic("parse erc20 abi: " + err.Error())
	}
	return parsed
}

// ERC20 reads and encodes ERC20 calls. Reads go through a circuit breaker.
type ERC20 struct {
	client ChainClient
	cb     *circuitbreaker.CircuitBreaker[[]byte]
}

// NewERC20 creates an ERC20 caller.
func NewERC20(client ChainClient) *ERC20 {
	return &ERC20{
		client: client,
		cb:     circuitbreaker.New[[]byte](circuitbreaker.DefaultConfig("erc20-reads")),
	}
}

// Allowance reads allowance(owner, spender) at block, nil meaning latest.
func (e *ERC20) Allowance(ctx context.Context, token, owner, spender common.Address, block *big.Int) (*big.Int, error) {
	out, err := e.call(ctx, token, block, "allowance", owner, spender)
	if err != nil {
		return nil, err
	}
	amount, ok := out[0].(*big.Int)
	if !ok {
		return nil, apperror.Internal(apperror.CodeContractCallFailed,
			fmt.Sprintf("allowance on %s", token.Hex()),
			fmt.Errorf("unexpected output type %T", out[0]))
	}
	return amount, nil
}

// Decimals reads decimals().
func (e *ERC20) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	out, err := e.call(ctx, token, nil, "decimals")
	if err != nil {
		return 0, err
	}
	decimals, ok := out[0].(uint8)
	if !ok {
		return 0, apperror.Internal(apperror.CodeContractCallFailed,
			fmt.Sprintf("decimals on %s", token.Hex()),
			fmt.Errorf("unexpected output type %T", out[0]))
	}
	return decimals, nil
}

// PackApprove encodes approve(spender, amount).
func PackApprove(spender common.Address, amount *big.Int) ([]byte, error) {
	return parsedERC20.Pack("approve", spender, amount)
}

func (e *ERC20) call(ctx context.Context, token common.Address, block *big.Int, method string, args ...any) ([]any, error) {
	callCtx := fmt.Sprintf("%s on %s", method, token.Hex())

	data, err := parsedERC20.Pack(method, args...)
	if err != nil {
		return nil, apperror.Internal(apperror.CodeContractCallFailed, callCtx, err)
	}

	raw, err := e.cb.Execute(func() ([]byte, error) {
		return e.client.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, block)
	})
	if err != nil {
		return nil, apperror.External(apperror.CodeContractCallFailed, callCtx, err)
	}

	out, err := parsedERC20.Unpack(method, raw)
	if err != nil {
		return nil, apperror.External(apperror.CodeContractCallFailed, callCtx, err)
	}
	if len(out) == 0 {
		return nil, apperror.External(apperror.CodeContractCallFailed, callCtx, fmt.Errorf("empty output"))
	}
	return out, nil
}
