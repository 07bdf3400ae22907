package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestStageMetricsRecordsDuration(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewStageMetrics(Config{}, provider)
	if err != nil {
		t.Fatalf("new stage metrics: %v", err)
	}
	ctx := context.Background()
	done := m.Begin(ctx)
	m.RecordStage(ctx, "window_filter", nil, 3*time.Millisecond)
	m.RecordStage(ctx, "rank_categories", errors.New("boom"), time.Millisecond)
	done()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}

	var points int
	for _, scope := range rm.ScopeMetrics {
		for _, metric := range scope.Metrics {
			if metric.Name != "analytics.pipeline.stage.duration_ms" {
				continue
			}
			hist, ok := metric.Data.(metricdata.Histogram[float64])
			if !ok {
				t.Fatalf("unexpected data type %T", metric.Data)
			}
			points = len(hist.DataPoints)
		}
	}
	if points != 2 {
		t.Fatalf("expected 2 data points, got %d", points)
	}
}

func TestFilterAttributesDropsHighCardinality(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("stage", "top_n"),
		attribute.String("customer_id", "C1"),
		attribute.String("result", ""),
	)
	if len(attrs) != 1 || attrs[0].Key != "stage" {
		t.Fatalf("unexpected attributes %v", attrs)
	}
}
