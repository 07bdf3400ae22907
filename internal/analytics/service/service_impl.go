package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rajesh196rsh/e-commerce/internal/analytics/domain"
	"github.com/rajesh196rsh/e-commerce/internal/analytics/pipeline"
	"github.com/rajesh196rsh/e-commerce/internal/cache"
	"github.com/rajesh196rsh/e-commerce/internal/clock"
	"github.com/rajesh196rsh/e-commerce/internal/config"
	"github.com/rajesh196rsh/e-commerce/internal/events"
	obsctx "github.com/rajesh196rsh/e-commerce/internal/observability/context"
	"github.com/rajesh196rsh/e-commerce/internal/observability/metrics"
	"github.com/rajesh196rsh/e-commerce/internal/observability/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	reportTopCustomers    = "top_customers"
	reportCategorySummary = "category_summary"
)

type Service struct {
	source domain.Source
	log    *zap.Logger
	clock  clock.Clock

	cache   cache.ReportCache
	events  events.Publisher
	metrics *metrics.AnalyticsMetrics
	stages  *metrics.StageMetrics

	pipeline      *pipeline.Pipeline
	defaultWindow domain.Window
}

type ServiceParam struct {
	fx.In

	Source domain.Source
	Log    *zap.Logger
	Clock  clock.Clock
	Config config.Config

	Cache   cache.ReportCache         `optional:"true"`
	Events  events.Publisher          `optional:"true"`
	Metrics *metrics.AnalyticsMetrics `optional:"true"`
	Stages  *metrics.StageMetrics     `optional:"true"`
}

func NewService(p ServiceParam) (domain.Service, error) {
	window, err := domain.ParseWindow(p.Config.Report.Window)
	if err != nil {
		return nil, err
	}

	svc := &Service{
		source: p.Source,
		log:    p.Log.Named("analytics.service"),
		clock:  p.Clock,

		cache:   p.Cache,
		events:  p.Events,
		metrics: p.Metrics,
		stages:  p.Stages,

		defaultWindow: window,
	}
	svc.pipeline = pipeline.New(pipeline.Options{
		Workers: p.Config.Pipeline.Workers,
		Observe: svc.observeStage,
	})
	return svc, nil
}

// TopSpendingCustomers serves the report from cache or recomputes it from the
// source. A zero AsOf resolves to the clock and a zero Window to the configured
// default; Limit is taken as given.
func (s *Service) TopSpendingCustomers(ctx context.Context, req domain.Request) (rows []domain.SummaryRow, err error) {
	started := time.Now()
	defer func() { s.metrics.ObserveReport(reportTopCustomers, resultLabel(err), time.Since(started)) }()

	req = s.resolve(req)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "analytics.top_spending_customers",
		attribute.Int("limit", req.Limit),
		attribute.String("window", req.Window.String()),
	)
	defer func() { tracing.EndSpan(span, err) }()

	checksum := buildChecksum(req)
	log := s.log.With(
		zap.String("checksum", checksum),
		zap.String("run_id", obsctx.RunIDFromContext(ctx)),
	)

	cached, gen, ok := s.lookup(ctx, checksum, log)
	if ok {
		var rows []domain.SummaryRow
		if err := json.Unmarshal(cached, &rows); err == nil {
			return rows, nil
		}
		log.Warn("discarding undecodable cached report")
	}

	ds, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	done := s.stages.Begin(ctx)
	res, err := s.pipeline.Run(ctx, ds, req.AsOf, req.Window, req.Limit)
	done()
	if err != nil {
		log.Warn("report failed", zap.Error(err))
		return nil, err
	}

	log.Info("report computed",
		zap.Time("as_of", req.AsOf),
		zap.Time("window_start", res.Start),
		zap.Int("line_items", res.Lines),
		zap.Int("customers", len(res.Totals)),
		zap.Int("rows", len(res.Rows)),
	)
	s.metrics.SetReportRows(len(res.Rows))
	s.store(ctx, gen, checksum, res.Rows, log)
	s.publish(ctx, events.ReportGeneratedPayload{
		Report:   reportTopCustomers,
		Checksum: checksum,
		RunID:    obsctx.RunIDFromContext(ctx),
		AsOf:     req.AsOf.Format(time.RFC3339Nano),
		Window:   req.Window.String(),
		Limit:    req.Limit,
		Rows:     len(res.Rows),
	}, log)
	return res.Rows, nil
}

// CategorySummary reports catalog revenue per category.
func (s *Service) CategorySummary(ctx context.Context) (out []domain.CategorySummary, err error) {
	started := time.Now()
	defer func() { s.metrics.ObserveReport(reportCategorySummary, resultLabel(err), time.Since(started)) }()

	ctx, span := tracing.StartSpan(ctx, "analytics.category_summary")
	defer func() { tracing.EndSpan(span, err) }()

	log := s.log.With(zap.String("run_id", obsctx.RunIDFromContext(ctx)))
	checksum := reportCategorySummary
	cached, gen, ok := s.lookup(ctx, checksum, log)
	if ok {
		if err := json.Unmarshal(cached, &out); err == nil {
			return out, nil
		}
	}

	products, err := s.source.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	out = pipeline.SummarizeCategories(products)
	s.metrics.SetReportRows(len(out))
	s.store(ctx, gen, checksum, out, log)
	log.Info("category summary computed", zap.Int("products", len(products)), zap.Int("categories", len(out)))
	return out, nil
}

func (s *Service) resolve(req domain.Request) domain.Request {
	if req.AsOf.IsZero() {
		req.AsOf = s.clock.Now()
	}
	req.AsOf = req.AsOf.UTC()
	if req.Window.IsZero() {
		req.Window = s.defaultWindow
	}
	return req
}

func (s *Service) load(ctx context.Context) (domain.Dataset, error) {
	var ds domain.Dataset
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ds.Orders, err = s.source.ListOrders(gctx)
		return err
	})
	g.Go(func() (err error) {
		ds.LineItems, err = s.source.ListLineItems(gctx)
		return err
	})
	g.Go(func() (err error) {
		ds.Products, err = s.source.ListProducts(gctx)
		return err
	})
	g.Go(func() (err error) {
		ds.Customers, err = s.source.ListCustomers(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, domain.ErrSourceUnavailable) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return domain.Dataset{}, err
		}
		return domain.Dataset{}, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	return ds, nil
}

func (s *Service) observeStage(ctx context.Context, stage pipeline.Stage) (context.Context, func(error)) {
	ctx, span := tracing.StartSpan(ctx, "analytics.pipeline."+string(stage))
	started := time.Now()
	return ctx, func(err error) {
		elapsed := time.Since(started)
		tracing.EndSpan(span, err)
		s.stages.RecordStage(ctx, string(stage), err, elapsed)
		s.log.Debug("stage finished",
			zap.String("stage", string(stage)),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
	}
}

// lookup returns the cached payload and the cache generation observed before
// the source is read. A negative generation disables the later store.
func (s *Service) lookup(ctx context.Context, key string, log *zap.Logger) ([]byte, int64, bool) {
	if s.cache == nil {
		return nil, -1, false
	}
	value, gen, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Warn("report cache lookup failed", zap.Error(err))
		return nil, -1, false
	}
	s.metrics.IncCacheLookup(ok)
	return value, gen, ok
}

func (s *Service) store(ctx context.Context, gen int64, key string, value any, log *zap.Logger) {
	if s.cache == nil || gen < 0 {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		log.Warn("report cache encode failed", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, gen, key, payload); err != nil {
		log.Warn("report cache store failed", zap.Error(err))
	}
}

func (s *Service) publish(ctx context.Context, payload events.ReportGeneratedPayload, log *zap.Logger) {
	if s.events == nil {
		return
	}
	err := s.events.Publish(ctx, events.Event{
		Type:      events.EventReportGenerated,
		Payload:   payload.ToMap(),
		DedupeKey: events.EventReportGenerated + ":" + payload.Checksum,
	})
	if err != nil {
		log.Warn("report event not stored", zap.Error(err))
	}
}

func buildChecksum(req domain.Request) string {
	payload := fmt.Sprintf(
		"%s|%d|%s|%s",
		reportTopCustomers,
		req.Limit,
		req.Window.String(),
		req.AsOf.UTC().Format(time.RFC3339Nano),
	)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
