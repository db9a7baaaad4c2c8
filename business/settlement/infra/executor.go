package infra

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	blockchainApp "github.com/fd1az/swap-settler/business/blockchain/app"
	blockchainDomain "github.com/fd1az/swap-settler/business/blockchain/domain"
	quoteApp "github.com/fd1az/swap-settler/business/quote/app"
	quoteDomain "github.com/fd1az/swap-settler/business/quote/domain"
	"github.com/fd1az/swap-settler/internal/apperror"
	"github.com/fd1az/swap-settler/internal/logger"
)

// APIExecutor submits through the aggregator's execute endpoint with the
// same parameters the price and quote used.
type APIExecutor struct {
	quotes quoteApp.QuoteService
	logger logger.LoggerInterface
}

// NewAPIExecutor creates an APIExecutor.
func NewAPIExecutor(quotes quoteApp.QuoteService, log logger.LoggerInterface) *APIExecutor {
	return &APIExecutor{quotes: quotes, logger: log}
}

// Execute sends the signature, empty when none was needed.
func (e *APIExecutor) Execute(ctx context.Context, intent quoteDomain.TradeIntent, _ *quoteDomain.ExecutableQuote, sig blockchainDomain.Signature) (common.Hash, error) {
	res, err := e.quotes.Execute(ctx, intent, sig.Hex())
	if err != nil {
		return common.Hash{}, err
	}

	e.logger.Info(ctx, "execution submitted", "mode", "api", "tx_hash", res.TxHash.Hex())
	return res.TxHash, nil
}

// OnchainExecutor sends the quoted transaction from the trading account,
// appending the signature the way the settler contract expects it.
type OnchainExecutor struct {
	sender blockchainApp.TransactionSender
	waiter blockchainApp.ReceiptWaiter
	logger logger.LoggerInterface
}

// NewOnchainExecutor creates an OnchainExecutor.
func NewOnchainExecutor(sender blockchainApp.TransactionSender, waiter blockchainApp.ReceiptWaiter, log logger.LoggerInterface) *OnchainExecutor {
	return &OnchainExecutor{sender: sender, waiter: waiter, logger: log}
}

// Execute submits the quote transaction and waits for a successful receipt.
func (e *OnchainExecutor) Execute(ctx context.Context, intent quoteDomain.TradeIntent, quote *quoteDomain.ExecutableQuote, sig blockchainDomain.Signature) (common.Hash, error) {
	if quote == nil || quote.Transaction.To == (common.Address{}) {
		return common.Hash{}, apperror.Validation(apperror.CodeInvalidInput, "quote has no transaction target")
	}
	if e.sender.Account() != intent.Taker {
		return common.Hash{}, apperror.Validation(apperror.CodeInvalidInput,
			fmt.Sprintf("taker %s is not the signing account %s", intent.Taker.Hex(), e.sender.Account().Hex()))
	}

	to := quote.Transaction.To
	req := blockchainDomain.TxRequest{
		To:    &to,
		Data:  AppendSignature(quote.Transaction.Data, sig),
		Value: quote.Transaction.ValueWei(),
	}
	if gas, ok := quote.Transaction.Gas.Big(); ok && gas.IsUint64() {
		req.Gas = gas.Uint64()
	}

	hash, err := e.sender.Send(ctx, req)
	if err != nil {
		return common.Hash{}, err
	}
	e.logger.Info(ctx, "execution submitted", "mode", "onchain", "tx_hash", hash.Hex(), "gas", req.Gas)

	receipt, err := e.waiter.WaitMined(ctx, hash)
	if err != nil {
		return hash, err
	}
	if receipt.Status == 0 {
		return hash, apperror.New(apperror.CodeTransactionFailed,
			apperror.WithContext(fmt.Sprintf("settlement %s reverted in block %s", hash.Hex(), receipt.BlockNumber)))
	}
	return hash, nil
}

// AppendSignature returns data || uint256(len(sig)) || sig. Data is
// returned as a copy unchanged when sig is empty.
func AppendSignature(data []byte, sig blockchainDomain.Signature) []byte {
	out := make([]byte, 0, len(data)+32+len(sig.Bytes))
	out = append(out, data...)
	if sig.IsZero() {
		return out
	}
	size := common.LeftPadBytes(big.NewInt(int64(len(sig.Bytes))).Bytes(), 32)
	out = append(out, size...)
	return append(out, sig.Bytes...)
}
