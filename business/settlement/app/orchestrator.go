package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	blockchainApp "github.com/fd1az/swap-settler/business/blockchain/app"
	blockchainDomain "github.com/fd1az/swap-settler/business/blockchain/domain"
	quoteApp "github.com/fd1az/swap-settler/business/quote/app"
	quoteDomain "github.com/fd1az/swap-settler/business/quote/domain"
	"github.com/fd1az/swap-settler/business/settlement/domain"
	"github.com/fd1az/swap-settler/internal/apperror"
	"github.com/fd1az/swap-settler/internal/logger"
)

const (
	tracerName = "github.com/fd1az/swap-settler/business/settlement/app"

	// journalTimeout bounds the journal write, which outlives a cancelled attempt.
	journalTimeout = 10 * time.Second
)

// Deps are the collaborators of the orchestrator. Journal may be nil.
type Deps struct {
	Quotes     quoteApp.QuoteService
	Allowances blockchainApp.AllowanceManager
	Signer     blockchainApp.Signer
	Executor   Executor
	Reporter   Reporter
	Journal    Journal
}

// Orchestrator runs settlement attempts: price, allowance, quote, signature,
// execution. It never retries a stage; a failed attempt must be re-run whole.
type Orchestrator struct {
	deps    Deps
	guard   *pairGuard
	logger  logger.LoggerInterface
	tracer  trace.Tracer
	metrics *settlementMetrics
	now     func() time.Time
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(deps Deps, log logger.LoggerInterface) (*Orchestrator, error) {
	switch {
	case deps.Quotes == nil:
		return nil, apperror.Validation(apperror.CodeRequiredField, "quote service")
	case deps.Allowances == nil:
		return nil, apperror.Validation(apperror.CodeRequiredField, "allowance manager")
	case deps.Signer == nil:
		return nil, apperror.Validation(apperror.CodeRequiredField, "signer")
	case deps.Executor == nil:
		return nil, apperror.Validation(apperror.CodeRequiredField, "executor")
	case deps.Reporter == nil:
		return nil, apperror.Validation(apperror.CodeRequiredField, "reporter")
	}

	m, err := newSettlementMetrics()
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return &Orchestrator{
		deps:    deps,
		guard:   newPairGuard(),
		logger:  log,
		tracer:  otel.Tracer(tracerName),
		metrics: m,
		now:     time.Now,
	}, nil
}

// Settle runs one attempt for intent. The returned settlement is always
// non-nil and terminal; err is the stage failure, if any.
func (o *Orchestrator) Settle(ctx context.Context, intent quoteDomain.TradeIntent) (*domain.Settlement, error) {
	s := domain.NewSettlement(intent, o.now())

	ctx, span := o.tracer.Start(ctx, "settlement.settle", trace.WithAttributes(
		attribute.String("settlement_id", s.ID),
		attribute.String("pair", intent.PairKey()),
	))
	defer span.End()

	err := o.run(ctx, s)
	o.finish(ctx, s)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "settlement failed")
		return s, err
	}
	span.SetAttributes(attribute.String("tx_hash", s.TxHash.Hex()))
	span.SetStatus(codes.Ok, "executed")
	return s, nil
}

func (o *Orchestrator) run(ctx context.Context, s *domain.Settlement) error {
	intent := s.Intent

	if err := intent.Validate(); err != nil {
		return o.fail(ctx, s, domain.StageValidate, apperror.CodeInvalidIntent, err)
	}

	release, ok := o.guard.acquire(intent.PairKey())
	if !ok {
		return o.fail(ctx, s, domain.StageValidate, apperror.CodeSettlementInProgress,
			fmt.Errorf("pair %s is busy", intent.PairKey()))
	}
	defer release()

	o.logger.Info(ctx, "settlement started",
		"settlement_id", s.ID,
		"pair", intent.PairKey(),
		"sell_amount", intent.SellAmount.String())

	// Price discovery.
	start := o.now()
	price, err := o.deps.Quotes.GetPrice(ctx, intent)
	o.metrics.recordStage(ctx, domain.StagePrice, o.now().Sub(start), err == nil)
	if err != nil {
		return o.fail(ctx, s, domain.StagePrice, apperror.CodePriceUnavailable, err)
	}
	if price.NoLiquidity() {
		return o.fail(ctx, s, domain.StagePrice, apperror.CodePriceUnavailable,
			apperror.New(apperror.CodeLiquidityUnavailable))
	}
	s.Price = price
	if err := o.advance(ctx, s, domain.StagePrice, domain.StatePriceFetched); err != nil {
		return err
	}

	// Allowance bootstrap, only when the price reports a deficiency.
	if issue := price.AllowanceIssue(); issue != nil {
		o.logger.Info(ctx, "allowance required", "spender", issue.Spender.Hex(), "actual", issue.Actual.String())

		start = o.now()
		receipt, err := o.deps.Allowances.EnsureAllowance(ctx, intent.Taker, intent.SellToken, issue.Spender, intent.SellAmount)
		o.metrics.recordStage(ctx, domain.StageAllowance, o.now().Sub(start), err == nil)
		if err != nil {
			return o.fail(ctx, s, domain.StageAllowance, apperror.CodeApprovalFailed, err)
		}
		s.Approval = receipt
	}
	if err := o.advance(ctx, s, domain.StageAllowance, domain.StateAllowanceVerified); err != nil {
		return err
	}

	// Firm quote from the same intent the price used.
	start = o.now()
	quote, err := o.deps.Quotes.GetQuote(ctx, intent)
	o.metrics.recordStage(ctx, domain.StageQuote, o.now().Sub(start), err == nil)
	if err != nil {
		return o.fail(ctx, s, domain.StageQuote, apperror.CodeQuoteUnavailable, err)
	}
	if quote.NoLiquidity() {
		return o.fail(ctx, s, domain.StageQuote, apperror.CodeQuoteUnavailable,
			apperror.New(apperror.CodeLiquidityUnavailable))
	}
	s.Quote = quote
	if err := o.advance(ctx, s, domain.StageQuote, domain.StateQuoted); err != nil {
		return err
	}

	report := domain.BuildReport(quote)
	o.notify(ctx, "report_quote", func() { o.deps.Reporter.ReportQuote(s, report) })

	// Signature, only when the quote carries a payload.
	var sig blockchainDomain.Signature
	if payload, ok := quote.AuthorizationPayload(); ok {
		start = o.now()
		sig, err = o.sign(ctx, *payload)
		o.metrics.recordStage(ctx, domain.StageSign, o.now().Sub(start), err == nil)
		if err != nil {
			return o.fail(ctx, s, domain.StageSign, apperror.CodeSignatureDenied, err)
		}
		s.Signature = sig
		if err := o.advance(ctx, s, domain.StageSign, domain.StateSigned); err != nil {
			return err
		}
	} else if err := o.advance(ctx, s, domain.StageSign, domain.StateNoSignatureNeeded); err != nil {
		return err
	}

	// Execution.
	start = o.now()
	hash, err := o.deps.Executor.Execute(ctx, intent, quote, sig)
	o.metrics.recordStage(ctx, domain.StageExecute, o.now().Sub(start), err == nil)
	if err != nil {
		return o.fail(ctx, s, domain.StageExecute, apperror.CodeExecutionFailed, err)
	}
	s.TxHash = hash

	return o.advance(ctx, s, domain.StageExecute, domain.StateExecuted)
}

// sign signs payload and checks the signature is bound to it.
func (o *Orchestrator) sign(ctx context.Context, payload apitypes.TypedData) (blockchainDomain.Signature, error) {
	sig, err := o.deps.Signer.Sign(ctx, payload)
	if err != nil {
		return blockchainDomain.Signature{}, err
	}
	if sig.IsZero() {
		return blockchainDomain.Signature{}, errors.New("signer returned an empty signature")
	}

	digest, err := blockchainDomain.TypedDataHash(payload)
	if err != nil {
		return blockchainDomain.Signature{}, apperror.Internal(apperror.CodeInvalidTypedData, payload.PrimaryType, err)
	}
	if sig.PayloadHash != digest {
		return blockchainDomain.Signature{}, apperror.New(apperror.CodeInvalidState,
			apperror.WithContext(fmt.Sprintf("signature bound to %s, quote payload is %s",
				sig.PayloadHash.Hex(), digest.Hex())))
	}
	return sig, nil
}

func (o *Orchestrator) advance(ctx context.Context, s *domain.Settlement, stage domain.Stage, to domain.State) error {
	from := s.State
	if err := s.Advance(to, o.now()); err != nil {
		return o.fail(ctx, s, stage, apperror.CodeInvalidState, err)
	}

	o.logger.Debug(ctx, "settlement advanced", "settlement_id", s.ID, "from", from.String(), "to", to.String())
	o.notify(ctx, "stage_changed", func() { o.deps.Reporter.StageChanged(s, from, to) })
	return nil
}

func (o *Orchestrator) fail(ctx context.Context, s *domain.Settlement, stage domain.Stage, code apperror.Code, cause error) error {
	from := s.State
	appErr := s.Fail(stage, code, cause, o.now())

	o.logger.Error(ctx, "settlement failed", append([]any{"settlement_id", s.ID}, appErr.LogFields()...)...)
	o.notify(ctx, "stage_changed", func() { o.deps.Reporter.StageChanged(s, from, domain.StateFailed) })
	return appErr
}

// finish records the terminal settlement. Nothing here can change the outcome.
func (o *Orchestrator) finish(ctx context.Context, s *domain.Settlement) {
	o.metrics.recordAttempt(ctx, s)

	if s.Succeeded() {
		o.logger.Info(ctx, "settlement executed",
			"settlement_id", s.ID,
			"tx_hash", s.TxHash.Hex(),
			"signed", !s.Signature.IsZero(),
			"duration", s.Duration().String())
	}

	if o.deps.Journal != nil {
		jctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), journalTimeout)
		defer cancel()
		if err := o.deps.Journal.Record(jctx, s); err != nil {
			o.logger.Warn(ctx, "journal write failed", "settlement_id", s.ID, "error", err)
		}
	}

	o.notify(ctx, "finished", func() { o.deps.Reporter.Finished(s) })
}

// notify calls the reporter, swallowing panics.
func (o *Orchestrator) notify(ctx context.Context, event string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Warn(ctx, "reporter panicked", "event", event, "panic", fmt.Sprint(r))
		}
	}()
	fn()
}
