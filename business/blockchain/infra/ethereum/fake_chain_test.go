package ethereum

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const testKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

// fakeChain is an in-memory ChainClient that answers ERC20 reads and mines
// every sent transaction immediately with minedStatus.
type fakeChain struct {
	mu sync.Mutex

	block       uint64
	allowance   *big.Int
	decimals    uint8
	callErr     error
	calls       int
	baseFee     *big.Int
	tip         *big.Int
	tipCalls    int
	estimate    uint64
	estimateErr error
	sendErr     error
	minedStatus uint64
	noMining    bool

	sent     []*types.Transaction
	receipts map[common.Hash]*types.Receipt
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		block:       100,
		allowance:   big.NewInt(0),
		decimals:    18,
		baseFee:     big.NewInt(1_000_000),
		tip:         big.NewInt(1_000),
		estimate:    50_000,
		minedStatus: types.ReceiptStatusSuccessful,
		receipts:    map[common.Hash]*types.Receipt{},
	}
}

func (f *fakeChain) BlockNumber(context.Context) (uint64, error) {
	return f.block, nil
}

func (f *fakeChain) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	if f.callErr != nil {
		return nil, f.callErr
	}

	for name, method := range parsedERC20.Methods {
		if !bytes.Equal(call.Data[:4], method.ID) {
			continue
		}
		switch name {
		case "allowance":
			return method.Outputs.Pack(f.allowance)
		case "decimals":
			return method.Outputs.Pack(f.decimals)
		}
	}
	return nil, errors.New("execution reverted")
}

func (f *fakeChain) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return f.estimate, f.estimateErr
}

func (f *fakeChain) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	return &types.Header{Number: new(big.Int).SetUint64(f.block), BaseFee: f.baseFee}, nil
}

func (f *fakeChain) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(2_000_000), nil
}

func (f *fakeChain) SuggestGasTipCap(context.Context) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tipCalls++
	return f.tip, nil
}

func (f *fakeChain) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return uint64(len(f.sent)), nil
}

func (f *fakeChain) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, tx)
	if !f.noMining {
		f.receipts[tx.Hash()] = &types.Receipt{
			Status:      f.minedStatus,
			TxHash:      tx.Hash(),
			BlockNumber: new(big.Int).SetUint64(f.block + 1),
			GasUsed:     46_000,
		}
	}
	return nil
}

func (f *fakeChain) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r, ok := f.receipts[hash]; ok {
		return r, nil
	}
	return nil, ethereum.NotFound
}

func (f *fakeChain) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}
