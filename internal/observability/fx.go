package observability

import (
	"github.com/rajesh196rsh/e-commerce/internal/config"
	"github.com/rajesh196rsh/e-commerce/internal/observability/metrics"
	"github.com/rajesh196rsh/e-commerce/internal/observability/tracing"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(
		newTracingConfig,
		newMetricsConfig,
		tracing.NewProvider,
		metrics.NewMeterProvider,
		metrics.NewExporterFx,
		metrics.AnalyticsWithConfig,
		func(cfg metrics.Config, provider *sdkmetric.MeterProvider) (*metrics.StageMetrics, error) {
			return metrics.NewStageMetrics(cfg, provider)
		},
	),
	fx.Invoke(func(*sdktrace.TracerProvider, *metrics.Exporter) {}),
)

func newTracingConfig(cfg config.Config) tracing.Config {
	return tracing.Config{
		Enabled:          cfg.Tracing.Enabled,
		ServiceName:      cfg.AppName,
		ServiceVersion:   cfg.AppVersion,
		Environment:      cfg.Environment,
		ExporterEndpoint: cfg.Tracing.ExporterEndpoint,
		ExporterProtocol: cfg.Tracing.ExporterProtocol,
		SamplingRatio:    cfg.Tracing.SamplingRatio,
	}
}

func newMetricsConfig(cfg config.Config) metrics.Config {
	return metrics.Config{
		ServiceName:    cfg.AppName,
		ServiceVersion: cfg.AppVersion,
		Environment:    cfg.Environment,
		TextfilePath:   cfg.Metrics.TextfilePath,
		PushgatewayURL: cfg.Metrics.PushgatewayURL,
		Job:            cfg.Metrics.Job,
		OTLPEnabled:    cfg.Metrics.OTLPEnabled,
		OTLPEndpoint:   cfg.Metrics.OTLPEndpoint,
		OTLPInterval:   cfg.Metrics.OTLPInterval,
	}
}
