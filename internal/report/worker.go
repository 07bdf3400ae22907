package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rajesh196rsh/e-commerce/internal/analytics/domain"
	"github.com/rajesh196rsh/e-commerce/internal/clock"
	obsctx "github.com/rajesh196rsh/e-commerce/internal/observability/context"
	"github.com/rajesh196rsh/e-commerce/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Service domain.Service
	Log     *zap.Logger
	Clock   clock.Clock
	Config  Config            `optional:"true"`
	Metrics *metrics.Exporter `optional:"true"`
}

// Worker regenerates a report file on an interval.
type Worker struct {
	svc   domain.Service
	log   *zap.Logger
	clock clock.Clock
	cfg   Config

	metrics *metrics.Exporter
}

func NewWorker(p Params) (*Worker, error) {
	if p.Service == nil {
		return nil, errors.New("report_worker_unavailable")
	}
	return &Worker{
		svc:   p.Service,
		log:   p.Log.Named("report.worker"),
		clock: p.Clock,
		cfg:   p.Config.withDefaults(),

		metrics: p.Metrics,
	}, nil
}

func (w *Worker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		if err := w.RunOnce(ctx); err != nil {
			w.log.Warn("scheduled report run failed", zap.Error(err))
		}
		if err := w.metrics.Flush(ctx); err != nil {
			w.log.Warn("metrics flush failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce computes the report and replaces the output file. The file is
// written next to its destination and renamed so readers never see a
// partial report.
func (w *Worker) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, w.cfg.RunTimeout)
	defer cancel()

	runID := uuid.NewString()
	ctx = obsctx.WithRunID(ctx, runID)
	ctx = obsctx.WithCommand(ctx, "schedule")

	doc, err := w.build(ctx)
	if err != nil {
		return err
	}
	if err := WriteFile(w.cfg.OutputPath, w.cfg.Format, doc); err != nil {
		return err
	}

	w.log.Info("scheduled report written",
		zap.String("run_id", runID),
		zap.String("kind", string(w.cfg.Kind)),
		zap.String("path", w.cfg.OutputPath),
		zap.String("format", string(w.cfg.Format)),
	)
	return nil
}

func (w *Worker) build(ctx context.Context) (Document, error) {
	now := w.clock.Now()
	switch w.cfg.Kind {
	case KindCategorySummary:
		categories, err := w.svc.CategorySummary(ctx)
		if err != nil {
			return Document{}, err
		}
		if categories == nil {
			categories = []domain.CategorySummary{}
		}
		return Document{Title: "Category Summary", GeneratedAt: now, Categories: categories}, nil
	case KindTopCustomers:
		rows, err := w.svc.TopSpendingCustomers(ctx, domain.Request{
			Limit:  w.cfg.Limit,
			Window: w.cfg.Window,
			AsOf:   now,
		})
		if err != nil {
			return Document{}, err
		}
		return Document{
			Title:       "Top Spending Customers",
			GeneratedAt: now,
			AsOf:        now,
			Window:      w.cfg.Window.String(),
			Customers:   rows,
		}, nil
	}
	return Document{}, fmt.Errorf("unknown report kind %q", w.cfg.Kind)
}

// WriteFile renders doc into path atomically.
func WriteFile(path string, format Format, doc Document) (err error) {
	renderer, err := NewRenderer(format)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = renderer.Render(tmp, doc); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
