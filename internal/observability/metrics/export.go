package metrics

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Exporter flushes a Prometheus registry to a node-exporter textfile and/or
// a Pushgateway. A short-lived command has no scrape window, so metrics leave
// the process on Flush.
type Exporter struct {
	gatherer prometheus.Gatherer
	textfile string
	gateway  string
	job      string
}

// NewExporter returns nil when no target is configured; Flush on a nil
// Exporter is a no-op.
func NewExporter(cfg Config, gatherer prometheus.Gatherer) *Exporter {
	textfile := strings.TrimSpace(cfg.TextfilePath)
	gateway := strings.TrimSpace(cfg.PushgatewayURL)
	if textfile == "" && gateway == "" {
		return nil
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	job := strings.TrimSpace(cfg.Job)
	if job == "" {
		job = "spendlens"
	}
	return &Exporter{gatherer: gatherer, textfile: textfile, gateway: gateway, job: job}
}

// Flush writes the current state of every collector to each target.
func (e *Exporter) Flush(ctx context.Context) error {
	if e == nil {
		return nil
	}
	var errs []error
	if e.textfile != "" {
		if err := prometheus.WriteToTextfile(e.textfile, e.gatherer); err != nil {
			errs = append(errs, err)
		}
	}
	if e.gateway != "" {
		if err := push.New(e.gateway, e.job).Gatherer(e.gatherer).PushContext(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewExporterFx wires the exporter to the default registry and flushes it
// when the application stops.
func NewExporterFx(lc fx.Lifecycle, cfg Config, log *zap.Logger) *Exporter {
	exp := NewExporter(cfg, prometheus.DefaultGatherer)
	if exp == nil {
		return nil
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := exp.Flush(ctx); err != nil {
				log.Warn("metrics flush failed", zap.Error(err))
			}
			return nil
		},
	})
	return exp
}

// NewMeterProvider builds the otel meter provider and installs it globally.
// Without an OTLP reader the instruments still aggregate in-process and are
// discarded at shutdown.
func NewMeterProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (*sdkmetric.MeterProvider, error) {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", cfg.ServiceName),
			attribute.String("service.version", cfg.ServiceVersion),
			attribute.String("deployment.environment", cfg.Environment),
		),
	)
	if err != nil {
		return nil, err
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	if cfg.OTLPEnabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		exporterOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint := strings.TrimSpace(cfg.OTLPEndpoint); endpoint != "" {
			exporterOpts = append(exporterOpts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		exporter, err := otlpmetricgrpc.New(ctx, exporterOpts...)
		if err != nil {
			return nil, err
		}
		interval := cfg.OTLPInterval
		if interval <= 0 {
			interval = 15 * time.Second
		}
		opts = append(opts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))))
	}

	provider := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return provider.Shutdown(ctx)
			},
		})
	}
	if log != nil {
		log.Info("meter provider initialized", zap.Bool("otlp", cfg.OTLPEnabled))
	}
	return provider, nil
}
