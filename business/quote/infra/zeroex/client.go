// Package zeroex implements the quote service against the 0x Swap API v2
// (permit2 flavour).
package zeroex

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/swap-settler/business/quote/app"
	"github.com/fd1az/swap-settler/business/quote/domain"
	"github.com/fd1az/swap-settler/internal/apperror"
	"github.com/fd1az/swap-settler/internal/cache"
	"github.com/fd1az/swap-settler/internal/circuitbreaker"
	"github.com/fd1az/swap-settler/internal/httpclient"
	"github.com/fd1az/swap-settler/internal/logger"
	"github.com/fd1az/swap-settler/internal/ratelimit"
)

const (
	// BaseAPIURL is the public 0x API.
	BaseAPIURL = "https://api.0x.org"

	pricePath   = "/swap/permit2/price"
	quotePath   = "/swap/permit2/quote"
	executePath = "/swap/permit2/execute"
	sourcesPath = "/swap/v1/sources"

	headerAPIKey  = "0x-api-key"
	headerVersion = "0x-version"

	tracerName = "zeroex"

	defaultVersion    = "v2"
	defaultTimeout    = 15 * time.Second
	defaultSourcesTTL = 10 * time.Minute
)

var _ app.QuoteService = (*Client)(nil)

// Config holds configuration for the 0x client.
type Config struct {
	BaseURL           string
	APIKey            string
	Version           string
	Timeout           time.Duration
	RequestsPerMinute int
	SourcesCacheTTL   time.Duration
}

// Client is the 0x quote service.
type Client struct {
	client  httpclient.Client
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.CircuitBreaker[*httpclient.Response]
	sources *cache.Cache[uint64, []string]
	config  Config
	logger  logger.LoggerInterface
	tracer  trace.Tracer
}

// NewClient creates a 0x client. The auth headers are fixed for its lifetime.
func NewClient(cfg Config, log logger.LoggerInterface, opts ...httpclient.ClientOption) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseAPIURL
	}
	if cfg.Version == "" {
		cfg.Version = defaultVersion
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.SourcesCacheTTL == 0 {
		cfg.SourcesCacheTTL = defaultSourcesTTL
	}

	tracer := otel.Tracer(tracerName)

	clientOpts := append([]httpclient.ClientOption{
		httpclient.WithProviderName("0x"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(cfg.Timeout),
		httpclient.WithTraceOptions(tracer, httpclient.TraceResponse),
		httpclient.WithSecretHeader(headerAPIKey, cfg.APIKey),
		httpclient.WithHeaders(map[string]string{
			headerVersion:  cfg.Version,
			"Content-Type": "application/json",
		}),
	}, opts...)

	client, err := httpclient.NewInstrumentedClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	breakerCfg := circuitbreaker.DefaultConfig("zeroex")
	breakerCfg.IsSuccessful = countsAsSuccess
	breakerCfg.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn(context.Background(), "circuit breaker state changed",
			"breaker", name, "from", from.String(), "to", to.String())
	}

	return &Client{
		client:  client,
		limiter: ratelimit.New(cfg.RequestsPerMinute),
		breaker: circuitbreaker.New[*httpclient.Response](breakerCfg),
		sources: cache.New[uint64, []string](cfg.SourcesCacheTTL),
		config:  cfg,
		logger:  log,
		tracer:  tracer,
	}, nil
}

// Close stops the sources cache janitor.
func (c *Client) Close() {
	c.sources.Close()
}

// GetPrice fetches an indicative price.
func (c *Client) GetPrice(ctx context.Context, intent domain.TradeIntent) (*domain.PriceQuote, error) {
	ctx, span := c.tracer.Start(ctx, "zeroex.get_price", trace.WithAttributes(intentAttributes(intent)...))
	defer span.End()

	var price domain.PriceQuote
	if err := c.get(ctx, "price", pricePath, intent.Params(), &price); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "price request failed")
		return nil, err
	}

	span.SetAttributes(
		attribute.String("buy_amount", string(price.BuyAmount)),
		attribute.Bool("no_liquidity", price.NoLiquidity()),
		attribute.Bool("allowance_issue", price.AllowanceIssue() != nil),
	)
	c.logger.Debug(ctx, "fetched price",
		"pair", intent.PairKey(),
		"buy_amount", string(price.BuyAmount),
		"no_liquidity", price.NoLiquidity())

	return &price, nil
}

// GetQuote fetches a firm quote built from the same intent parameters as the price.
func (c *Client) GetQuote(ctx context.Context, intent domain.TradeIntent) (*domain.ExecutableQuote, error) {
	ctx, span := c.tracer.Start(ctx, "zeroex.get_quote", trace.WithAttributes(intentAttributes(intent)...))
	defer span.End()

	var quote domain.ExecutableQuote
	if err := c.get(ctx, "quote", quotePath, intent.Params(), &quote); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "quote request failed")
		return nil, err
	}

	_, signed := quote.AuthorizationPayload()
	span.SetAttributes(
		attribute.String("buy_amount", string(quote.BuyAmount)),
		attribute.Int("fills", len(quote.Route.Fills)),
		attribute.Bool("needs_signature", signed),
	)
	c.logger.Debug(ctx, "fetched quote",
		"pair", intent.PairKey(),
		"buy_amount", string(quote.BuyAmount),
		"fills", len(quote.Route.Fills),
		"needs_signature", signed)

	return &quote, nil
}

// Execute submits intent with signature. An empty signature is sent as-is.
func (c *Client) Execute(ctx context.Context, intent domain.TradeIntent, signature string) (*domain.Execution, error) {
	ctx, span := c.tracer.Start(ctx, "zeroex.execute", trace.WithAttributes(intentAttributes(intent)...))
	defer span.End()

	params := intent.Params()
	params.Set("signature", signature)

	var execution domain.Execution
	if err := c.get(ctx, "execute", executePath, params, &execution); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "execute request failed")
		return nil, err
	}

	if execution.TxHash == (domain.Execution{}).TxHash {
		err := apperror.External(apperror.CodeMalformedResponse, "GET "+executePath,
			errors.New("response carries no transaction hash"))
		span.RecordError(err)
		span.SetStatus(codes.Error, "missing hash")
		return nil, err
	}

	span.SetAttributes(attribute.String("tx_hash", execution.TxHash.Hex()))
	c.logger.Info(ctx, "settlement submitted", "pair", intent.PairKey(), "tx_hash", execution.TxHash.Hex())

	return &execution, nil
}

type sourcesResponse struct {
	Sources map[string]any `json:"sources"`
}

// ListLiquiditySources returns the sorted source names for chainID.
func (c *Client) ListLiquiditySources(ctx context.Context, chainID uint64) ([]string, error) {
	ctx, span := c.tracer.Start(ctx, "zeroex.list_sources",
		trace.WithAttributes(attribute.Int64("chain_id", int64(chainID))))
	defer span.End()

	if cached, ok := c.sources.Get(ctx, chainID); ok {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		return append([]string(nil), cached...), nil
	}

	params := url.Values{}
	params.Set("chainId", strconv.FormatUint(chainID, 10))

	var resp sourcesResponse
	if err := c.get(ctx, "sources", sourcesPath, params, &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "sources request failed")
		return nil, err
	}

	names := make([]string, 0, len(resp.Sources))
	for name := range resp.Sources {
		names = append(names, name)
	}
	sort.Strings(names)

	c.sources.Set(ctx, chainID, names, c.config.SourcesCacheTTL)
	span.SetAttributes(attribute.Int("sources", len(names)))

	return append([]string(nil), names...), nil
}

// get performs one rate limited, breaker guarded GET. It never retries.
func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, result any) error {
	op := "GET " + path

	if err := c.limiter.Wait(ctx); err != nil {
		return apperror.External(apperror.CodeServiceUnavailable, op, err)
	}

	_, err := c.breaker.Execute(func() (*httpclient.Response, error) {
		return c.client.NewRequestWithOptions(
			httpclient.WithLabels(httpclient.NewLabel("endpoint", endpoint)),
			httpclient.WithResponseErrorHandler(errorHandler),
			httpclient.WithHeadersLogConfig(true),
		).
			SetQueryValues(params).
			SetResult(result).
			Get(ctx, path)
	})
	if err != nil {
		return classify(op, err)
	}
	return nil
}

func intentAttributes(intent domain.TradeIntent) []attribute.KeyValue {
	amount := ""
	if intent.SellAmount != nil {
		amount = intent.SellAmount.String()
	}
	return []attribute.KeyValue{
		attribute.Int64("chain_id", int64(intent.ChainID)),
		attribute.String("sell_token", intent.SellToken.Hex()),
		attribute.String("buy_token", intent.BuyToken.Hex()),
		attribute.String("sell_amount", amount),
	}
}
