package metrics

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// StageMetrics captures per-stage pipeline timings through OpenTelemetry.
type StageMetrics struct {
	stageDuration metric.Float64Histogram
	inFlight      metric.Int64UpDownCounter
}

// NewStageMetrics creates pipeline stage instruments.
func NewStageMetrics(cfg Config, provider metric.MeterProvider) (*StageMetrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "spendlens"
	}
	meter := provider.Meter(name + "/pipeline")

	stageDuration, err := meter.Float64Histogram("analytics.pipeline.stage.duration_ms")
	if err != nil {
		return nil, err
	}
	inFlight, err := meter.Int64UpDownCounter("analytics.pipeline.in_flight")
	if err != nil {
		return nil, err
	}

	return &StageMetrics{
		stageDuration: stageDuration,
		inFlight:      inFlight,
	}, nil
}

// Begin marks a run as in flight and returns the matching completion func.
func (m *StageMetrics) Begin(ctx context.Context) func() {
	if m == nil {
		return func() {}
	}
	m.inFlight.Add(ctx, 1)
	return func() { m.inFlight.Add(ctx, -1) }
}

// RecordStage records the duration of one pipeline stage.
func (m *StageMetrics) RecordStage(ctx context.Context, stage string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	attrs := FilterAttributes(
		attribute.String("stage", normalizeStage(stage)),
		attribute.String("result", result),
	)
	m.stageDuration.Record(ctx, float64(duration.Microseconds())/1000, metric.WithAttributes(attrs...))
}

func normalizeStage(stage string) string {
	stage = strings.TrimSpace(stage)
	if stage == "" {
		return "unknown"
	}
	return stage
}
