package ethereum

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
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

var _ app.AllowanceManager = (*AllowanceManager)(nil)

// AllowanceManager reads allowances and sends unlimited approvals.
type AllowanceManager struct {
	client ChainClient
	erc20  *ERC20
	sender app.TransactionSender
	waiter app.ReceiptWaiter
	logger logger.LoggerInterface
	tracer trace.Tracer
}

// NewAllowanceManager creates an AllowanceManager.
func NewAllowanceManager(client ChainClient, erc20 *ERC20, sender app.TransactionSender, waiter app.ReceiptWaiter, log logger.LoggerInterface) *AllowanceManager {
	return &AllowanceManager{
		client: client,
		erc20:  erc20,
		sender: sender,
		waiter: waiter,
		logger: log,
		tracer: otel.Tracer(tracerName),
	}
}

// CheckAllowance reads the allowance pinned to the latest block number.
func (m *AllowanceManager) CheckAllowance(ctx context.Context, owner, token, spender common.Address) (*domain.AllowanceState, error) {
	ctx, span := m.tracer.Start(ctx, "allowance.check", trace.WithAttributes(
		attribute.String("owner", owner.Hex()),
		attribute.String("token", token.Hex()),
		attribute.String("spender", spender.Hex()),
	))
	defer span.End()

	block, err := m.client.BlockNumber(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "block number failed")
		return nil, apperror.External(apperror.CodeEthereumRPCError, "block number", err)
	}

	amount, err := m.erc20.Allowance(ctx, token, owner, spender, new(big.Int).SetUint64(block))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "allowance read failed")
		return nil, err
	}

	span.SetAttributes(attribute.String("amount", amount.String()), attribute.Int64("block", int64(block)))
	return &domain.AllowanceState{
		Owner:       owner,
		Token:       token,
		Spender:     spender,
		Amount:      amount,
		BlockNumber: block,
	}, nil
}

// EnsureAllowance approves MaxUint256 when the allowance is below minAmount.
// The call blocks until the approval is mined and is never retried.
func (m *AllowanceManager) EnsureAllowance(ctx context.Context, owner, token, spender common.Address, minAmount *big.Int) (*domain.ApprovalReceipt, error) {
	ctx, span := m.tracer.Start(ctx, "allowance.ensure", trace.WithAttributes(
		attribute.String("token", token.Hex()),
		attribute.String("spender", spender.Hex()),
	))
	defer span.End()

	fail := func(err error) (*domain.ApprovalReceipt, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "approval failed")
		return nil, apperror.New(apperror.CodeApprovalFailed,
			apperror.WithContext(fmt.Sprintf("%s for %s", token.Hex(), spender.Hex())),
			apperror.WithCause(err))
	}

	if owner != m.sender.Account() {
		return fail(apperror.Validation(apperror.CodeInvalidInput,
			fmt.Sprintf("owner %s is not the signing account", owner.Hex())))
	}

	state, err := m.CheckAllowance(ctx, owner, token, spender)
	if err != nil {
		return fail(err)
	}
	if state.Covers(minAmount) {
		span.AddEvent("allowance_sufficient")
		m.logger.Debug(ctx, "allowance sufficient, skipping approval",
			"token", token.Hex(), "spender", spender.Hex(), "amount", state.Amount.String())
		return &domain.ApprovalReceipt{Skipped: true}, nil
	}

	data, err := PackApprove(spender, new(big.Int).Set(math.MaxBig256))
	if err != nil {
		return fail(err)
	}

	hash, err := m.sender.Send(ctx, domain.TxRequest{To: &token, Data: data})
	if err != nil {
		return fail(err)
	}
	m.logger.Info(ctx, "approval sent, waiting for receipt", "tx_hash", hash.Hex(), "spender", spender.Hex())

	receipt, err := m.waiter.WaitMined(ctx, hash)
	if err != nil {
		return fail(err)
	}

	result := &domain.ApprovalReceipt{
		TxHash:  hash,
		GasUsed: receipt.GasUsed,
		Status:  receipt.Status,
	}
	if receipt.BlockNumber != nil {
		result.BlockNumber = receipt.BlockNumber.Uint64()
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return fail(apperror.New(apperror.CodeTransactionFailed,
			apperror.WithContext("approval reverted "+hash.Hex())))
	}

	span.SetAttributes(attribute.String("tx_hash", hash.Hex()), attribute.Int64("gas_used", int64(receipt.GasUsed)))
	span.SetStatus(codes.Ok, "approved")
	m.logger.Info(ctx, "approval confirmed", "tx_hash", hash.Hex(), "block", result.BlockNumber)

	return result, nil
}
