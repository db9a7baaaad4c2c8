package ethereum

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/swap-settler/business/blockchain/app"
	"github.com/fd1az/swap-settler/internal/apperror"
	"github.com/fd1az/swap-settler/internal/logger"
)

var _ app.ReceiptWaiter = (*ReceiptWaiter)(nil)

// ReceiptWaiter polls for transaction receipts.
type ReceiptWaiter struct {
	client   ChainClient
	interval time.Duration
	timeout  time.Duration
	logger   logger.LoggerInterface
	tracer   trace.Tracer
}

// NewReceiptWaiter creates a waiter polling every interval for up to timeout.
func NewReceiptWaiter(client ChainClient, interval, timeout time.Duration, log logger.LoggerInterface) *ReceiptWaiter {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &ReceiptWaiter{
		client:   client,
		interval: interval,
		timeout:  timeout,
		logger:   log,
		tracer:   otel.Tracer(tracerName),
	}
}

// WaitMined returns the receipt once hash is mined, whatever its status.
func (w *ReceiptWaiter) WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ctx, span := w.tracer.Start(ctx, "tx.wait_mined",
		trace.WithAttributes(attribute.String("tx_hash", hash.Hex())))
	defer span.End()

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		receipt, err := w.client.TransactionReceipt(ctx, hash)
		if err == nil {
			span.SetAttributes(
				attribute.Int64("block", receipt.BlockNumber.Int64()),
				attribute.Int64("status", int64(receipt.Status)),
			)
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			w.logger.Debug(ctx, "receipt lookup failed", "tx_hash", hash.Hex(), "error", err)
		}

		select {
		case <-ctx.Done():
			span.RecordError(ctx.Err())
			span.SetStatus(codes.Error, "timeout")
			return nil, apperror.New(apperror.CodeReceiptTimeout,
				apperror.WithContext(hash.Hex()),
				apperror.WithCause(ctx.Err()))
		case <-ticker.C:
		}
	}
}
