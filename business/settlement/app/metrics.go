package app

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/fd1az/swap-settler/business/settlement/domain"
)

const meterName = "github.com/fd1az/swap-settler/business/settlement/app"

type settlementMetrics struct {
	attempts     metric.Int64Counter
	stageLatency metric.Float64Histogram
}

func newSettlementMetrics() (*settlementMetrics, error) {
	meter := otel.Meter(meterName)

	attempts, err := meter.Int64Counter(
		"settlement_attempts_total",
		metric.WithDescription("Settlement attempts by outcome and failing stage"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	stageLatency, err := meter.Float64Histogram(
		"settlement_stage_latency_ms",
		metric.WithDescription("Latency of each settlement stage"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &settlementMetrics{attempts: attempts, stageLatency: stageLatency}, nil
}

func (m *settlementMetrics) recordStage(ctx context.Context, stage domain.Stage, took time.Duration, ok bool) {
	m.stageLatency.Record(ctx, float64(took.Microseconds())/1000.0, metric.WithAttributes(
		attribute.String("stage", stage.String()),
		attribute.Bool("success", ok),
	))
}

func (m *settlementMetrics) recordAttempt(ctx context.Context, s *domain.Settlement) {
	outcome, stage := "executed", ""
	if s.Failure != nil {
		outcome, stage = "failed", s.Failure.Stage.String()
	}
	m.attempts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("stage", stage),
	))
}
