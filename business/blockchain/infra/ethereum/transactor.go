package ethereum

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/swap-settler/business/blockchain/app"
	"github.com/fd1az/swap-settler/business/blockchain/domain"
	"github.com/fd1az/swap-settler/internal/apperror"
	"github.com/fd1az/swap-settler/internal/logger"
)

var _ app.TransactionSender = (*Transactor)(nil)

// Transactor builds, signs and broadcasts EIP-1559 transactions from the wallet.
type Transactor struct {
	client          ChainClient
	wallet          *Wallet
	gas             app.GasOracle
	defaultGasLimit uint64
	logger          logger.LoggerInterface
	tracer          trace.Tracer
}

// NewTransactor creates a Transactor. defaultGasLimit is used when estimation fails.
func NewTransactor(client ChainClient, wallet *Wallet, gas app.GasOracle, defaultGasLimit uint64, log logger.LoggerInterface) *Transactor {
	return &Transactor{
		client:          client,
		wallet:          wallet,
		gas:             gas,
		defaultGasLimit: defaultGasLimit,
		logger:          log,
		tracer:          otel.Tracer(tracerName),
	}
}

// Account returns the sending address.
func (t *Transactor) Account() common.Address {
	return t.wallet.Account()
}

// Send signs and broadcasts req. It does not wait for inclusion.
func (t *Transactor) Send(ctx context.Context, req domain.TxRequest) (common.Hash, error) {
	ctx, span := t.tracer.Start(ctx, "tx.send")
	defer span.End()

	if req.To == nil {
		err := apperror.Validation(apperror.CodeInvalidInput, "transaction has no recipient")
		span.RecordError(err)
		return common.Hash{}, err
	}
	value := req.Value
	if value == nil {
		value = new(big.Int)
	}
	span.SetAttributes(
		attribute.String("to", req.To.Hex()),
		attribute.Int("data_len", len(req.Data)),
	)

	from := t.wallet.Account()

	nonce, err := t.client.PendingNonceAt(ctx, from)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "nonce failed")
		return common.Hash{}, apperror.External(apperror.CodeEthereumRPCError, "pending nonce", err)
	}

	fees, err := t.gas.GetFees(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fees failed")
		return common.Hash{}, err
	}

	gasLimit := req.Gas
	if gasLimit == 0 {
		gasLimit, err = t.gas.EstimateGas(ctx, ethereum.CallMsg{
			From:  from,
			To:    req.To,
			Value: value,
			Data:  req.Data,
		})
		if err != nil {
			t.logger.Warn(ctx, "gas estimation failed, using default", "default", t.defaultGasLimit, "error", err)
			span.AddEvent("using_default_gas")
			gasLimit = t.defaultGasLimit
		}
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   t.wallet.ChainID(),
		Nonce:     nonce,
		GasTipCap: fees.TipCap,
		GasFeeCap: fees.FeeCap,
		Gas:       gasLimit,
		To:        req.To,
		Value:     value,
		Data:      req.Data,
	})

	signed, err := t.wallet.SignTx(tx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "sign failed")
		return common.Hash{}, apperror.Internal(apperror.CodeTransactionFailed, "sign transaction", err)
	}

	if err := t.client.SendTransaction(ctx, signed); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send failed")
		return common.Hash{}, apperror.External(apperror.CodeTransactionFailed, "send transaction", err)
	}

	span.SetAttributes(
		attribute.String("tx_hash", signed.Hash().Hex()),
		attribute.Int64("nonce", int64(nonce)),
		attribute.Int64("gas", int64(gasLimit)),
	)
	span.SetStatus(codes.Ok, "sent")
	t.logger.Info(ctx, "transaction sent",
		"tx_hash", signed.Hash().Hex(),
		"to", req.To.Hex(),
		"nonce", nonce,
		"gas", gasLimit,
		"fee_cap_gwei", fees.FeeCapGwei())

	return signed.Hash(), nil
}
