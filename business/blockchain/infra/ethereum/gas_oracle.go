package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/swap-settler/business/blockchain/app"
	"github.com/fd1az/swap-settler/business/blockchain/domain"
	"github.com/fd1az/swap-settler/internal/apperror"
	"github.com/fd1az/swap-settler/internal/cache"
	"github.com/fd1az/swap-settler/internal/circuitbreaker"
	"github.com/fd1az/swap-settler/internal/logger"
)

var _ app.GasOracle = (*GasOracle)(nil)

const feesCacheKey = "next"

// GasOracleConfig holds configuration for the gas oracle.
type GasOracleConfig struct {
	CacheTTL          time.Duration // How long to cache fees
	MaxFeeCap         *big.Int      // Ceiling on the fee cap, nil for none
	GasLimitMarginPct uint64        // Added on top of estimates
}

// DefaultGasOracleConfig returns sensible defaults.
func DefaultGasOracleConfig() GasOracleConfig {
	return GasOracleConfig{
		CacheTTL:          12 * time.Second, // ~1 block
		GasLimitMarginPct: 10,
	}
}

// gasOracleMetrics holds OTEL metric instruments.
type gasOracleMetrics struct {
	feeFetches  metric.Int64Counter
	feeCapGwei  metric.Float64Gauge
	estimateGas metric.Int64Counter
	cacheHits   metric.Int64Counter
	cacheMisses metric.Int64Counter
}

// GasOracle implements app.GasOracle using go-ethereum.
type GasOracle struct {
	config GasOracleConfig
	logger logger.LoggerInterface
	client ChainClient

	feesCache *cache.Cache[string, *domain.GasFees]
	cb        *circuitbreaker.CircuitBreaker[*domain.GasFees]

	tracer  trace.Tracer
	metrics *gasOracleMetrics
}

// NewGasOracle creates a new gas oracle instance.
func NewGasOracle(client ChainClient, cfg GasOracleConfig, log logger.LoggerInterface) (*GasOracle, error) {
	g := &GasOracle{
		config:    cfg,
		logger:    log,
		client:    client,
		feesCache: cache.New[string, *domain.GasFees](5 * time.Minute),
		cb:        circuitbreaker.New[*domain.GasFees](circuitbreaker.DefaultConfig("gas-oracle")),
		tracer:    otel.Tracer(tracerName),
	}

	if err := g.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return g, nil
}

func (g *GasOracle) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	g.metrics = &gasOracleMetrics{}

	g.metrics.feeFetches, err = meter.Int64Counter(
		"gas_fee_fetches_total",
		metric.WithDescription("Total fee fetch attempts"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return err
	}

	g.metrics.feeCapGwei, err = meter.Float64Gauge(
		"gas_fee_cap_gwei",
		metric.WithDescription("Current max fee per gas in gwei"),
		metric.WithUnit("gwei"),
	)
	if err != nil {
		return err
	}

	g.metrics.estimateGas, err = meter.Int64Counter(
		"gas_estimate_total",
		metric.WithDescription("Total gas estimation calls"),
		metric.WithUnit("{estimate}"),
	)
	if err != nil {
		return err
	}

	g.metrics.cacheHits, err = meter.Int64Counter(
		"gas_cache_hits_total",
		metric.WithDescription("Fee cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return err
	}

	g.metrics.cacheMisses, err = meter.Int64Counter(
		"gas_cache_misses_total",
		metric.WithDescription("Fee cache misses"),
		metric.WithUnit("{miss}"),
	)
	return err
}

// GetFees returns EIP-1559 fees, cached for about a block.
func (g *GasOracle) GetFees(ctx context.Context) (*domain.GasFees, error) {
	ctx, span := g.tracer.Start(ctx, "gas.get_fees")
	defer span.End()

	if fees, found := g.feesCache.Get(ctx, feesCacheKey); found {
		g.metrics.cacheHits.Add(ctx, 1)
		span.AddEvent("cache_hit")
		return fees, nil
	}

	g.metrics.cacheMisses.Add(ctx, 1)
	g.metrics.feeFetches.Add(ctx, 1)

	fees, err := g.cb.Execute(func() (*domain.GasFees, error) {
		return g.fetchFees(ctx)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, apperror.New(apperror.CodeEthereumRPCError,
			apperror.WithCause(err),
			apperror.WithContext("failed to get gas fees"))
	}

	if fees.CapFeeCap(g.config.MaxFeeCap) {
		span.AddEvent("fee_cap_exceeded_max")
		g.logger.Warn(ctx, "fee cap exceeds max, capping", "max_wei", g.config.MaxFeeCap.String())
	}

	g.feesCache.Set(ctx, feesCacheKey, fees, g.config.CacheTTL)
	g.metrics.feeCapGwei.Record(ctx, fees.FeeCapGwei())

	span.SetAttributes(
		attribute.String("base_fee_wei", fees.BaseFee.String()),
		attribute.String("tip_cap_wei", fees.TipCap.String()),
		attribute.Float64("fee_cap_gwei", fees.FeeCapGwei()),
	)
	span.SetStatus(codes.Ok, "fetched")

	return fees, nil
}

func (g *GasOracle) fetchFees(ctx context.Context) (*domain.GasFees, error) {
	tip, err := g.client.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("suggest tip cap: %w", err)
	}

	head, err := g.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("latest header: %w", err)
	}

	baseFee := head.BaseFee
	if baseFee == nil {
		// Pre-London header: fall back to the legacy price as the base.
		if baseFee, err = g.client.SuggestGasPrice(ctx); err != nil {
			return nil, fmt.Errorf("suggest gas price: %w", err)
		}
	}

	return domain.NewGasFees(baseFee, tip), nil
}

// EstimateGas estimates msg and adds the configured margin.
func (g *GasOracle) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	to := ""
	if msg.To != nil {
		to = msg.To.Hex()
	}
	ctx, span := g.tracer.Start(ctx, "gas.estimate",
		trace.WithAttributes(
			attribute.String("to", to),
			attribute.Int("data_len", len(msg.Data)),
		),
	)
	defer span.End()

	g.metrics.estimateGas.Add(ctx, 1)

	gas, err := g.client.EstimateGas(ctx, msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "estimate failed")
		return 0, apperror.New(apperror.CodeGasEstimationFailed,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("failed to estimate gas for %s", to)))
	}

	gas = domain.WithMargin(gas, g.config.GasLimitMarginPct)

	span.SetAttributes(attribute.Int64("gas", int64(gas)))
	span.SetStatus(codes.Ok, "estimated")

	return gas, nil
}

// Close stops the fee cache.
func (g *GasOracle) Close() error {
	g.feesCache.Close()
	return nil
}
