// Package pipeline computes top spending customers from a loaded catalog
// snapshot. Every stage is a pure function; Pipeline sequences them and
// reports stage boundaries to an optional Observer.
package pipeline

import (
	"context"
	"time"

	"github.com/rajesh196rsh/e-commerce/internal/analytics/domain"
	"golang.org/x/sync/errgroup"
)

// Stage names one step of a run.
type Stage string

const (
	StageWindowFilter   Stage = "window_filter"
	StageAggregateLines Stage = "aggregate_lines"
	StageCustomerTotals Stage = "customer_totals"
	StageRankCategories Stage = "rank_categories"
	StageTopN           Stage = "top_n"
)

// Observer is called when a stage starts. The returned func is called with
// the stage result when it ends.
type Observer func(ctx context.Context, stage Stage) (context.Context, func(error))

// Options configures a Pipeline.
type Options struct {
	Workers int
	Observe Observer
}

// Result carries the report and the intermediates it was derived from.
type Result struct {
	Start      time.Time
	Lines      int
	Aggregates []domain.LineAggregate
	Totals     []domain.CustomerTotal
	Ranks      []domain.CategoryRank
	Rows       []domain.SummaryRow
}

// Pipeline runs the spending computation.
type Pipeline struct {
	workers int
	observe Observer
}

// New builds a pipeline. Workers defaults to 1.
func New(opts Options) *Pipeline {
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Pipeline{workers: workers, observe: opts.Observe}
}

// Run filters ds to the window ending at asOf and returns the top limit
// customers by spend. Nothing is returned on error.
func (p *Pipeline) Run(ctx context.Context, ds domain.Dataset, asOf time.Time, window domain.Window, limit int) (Result, error) {
	req := domain.Request{Limit: limit, Window: window, AsOf: asOf}
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	res := Result{Start: window.Start(asOf)}

	var tuples []domain.LineTuple
	err := p.stage(ctx, StageWindowFilter, func(context.Context) error {
		var err error
		tuples, err = FilterWindow(ds, res.Start)
		return err
	})
	if err != nil {
		return Result{}, err
	}
	res.Lines = len(tuples)

	err = p.stage(ctx, StageAggregateLines, func(ctx context.Context) error {
		var err error
		res.Aggregates, err = AggregateLineItems(ctx, tuples, p.workers)
		return err
	})
	if err != nil {
		return Result{}, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return p.stage(gctx, StageCustomerTotals, func(context.Context) error {
			res.Totals = AggregateCustomerTotals(res.Aggregates)
			return nil
		})
	})
	g.Go(func() error {
		return p.stage(gctx, StageRankCategories, func(context.Context) error {
			res.Ranks = RankCategories(res.Aggregates)
			return nil
		})
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	if err := VerifyTotals(res.Totals, res.Ranks); err != nil {
		return Result{}, err
	}

	err = p.stage(ctx, StageTopN, func(context.Context) error {
		res.Rows = SelectTopN(ds.Customers, res.Totals, TopCategories(res.Ranks), limit)
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

func (p *Pipeline) stage(ctx context.Context, stage Stage, fn func(context.Context) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.observe != nil {
		var done func(error)
		ctx, done = p.observe(ctx, stage)
		defer func() { done(err) }()
	}
	return fn(ctx)
}
