package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/rajesh196rsh/e-commerce/internal/cache"
	catalogdomain "github.com/rajesh196rsh/e-commerce/internal/catalog/domain"
	"github.com/rajesh196rsh/e-commerce/internal/catalog/repository"
	"github.com/rajesh196rsh/e-commerce/internal/clock"
	"github.com/rajesh196rsh/e-commerce/internal/config"
	"github.com/rajesh196rsh/e-commerce/internal/events"
	"github.com/rajesh196rsh/e-commerce/internal/ingest/domain"
	"github.com/rajesh196rsh/e-commerce/internal/observability/logger"
	"github.com/rajesh196rsh/e-commerce/internal/observability/metrics"
	"github.com/rajesh196rsh/e-commerce/internal/observability/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	store *repository.Store
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock

	events  events.Publisher
	cache   cache.ReportCache
	metrics *metrics.AnalyticsMetrics

	batchSize int
}

type ServiceParam struct {
	fx.In

	DB     *gorm.DB
	Store  *repository.Store
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Config config.Config

	Events  events.Publisher          `optional:"true"`
	Cache   cache.ReportCache         `optional:"true"`
	Metrics *metrics.AnalyticsMetrics `optional:"true"`
}

func NewService(p ServiceParam) domain.Service {
	batchSize := p.Config.Import.BatchSize
	if batchSize <= 0 {
		batchSize = domain.DefaultBatchSize
	}
	return &Service{
		db:    p.DB,
		store: p.Store,
		log:   p.Log.Named("ingest.service"),
		genID: p.GenID,
		clock: p.Clock,

		events:  p.Events,
		cache:   p.Cache,
		metrics: p.Metrics,

		batchSize: batchSize,
	}
}

// Import reads a CSV file of the given kind into the catalog. Row-level
// problems are counted on the returned run; only unreadable input or a
// missing required column fails the import.
func (s *Service) Import(ctx context.Context, kind domain.Kind, source string, r io.Reader) (run domain.ImportRun, err error) {
	if _, err := domain.ParseKind(string(kind)); err != nil {
		return domain.ImportRun{}, err
	}

	ctx, span := tracing.StartSpan(ctx, "ingest.import", attribute.String("kind", string(kind)))
	defer func() { tracing.EndSpan(span, err) }()

	run = domain.ImportRun{
		ID:        s.genID.Generate(),
		Kind:      kind,
		Source:    source,
		Status:    domain.ImportStatusRunning,
		StartedAt: s.clock.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&run).Error; err != nil {
		return domain.ImportRun{}, err
	}

	log := logger.FromContext(ctx).Named("ingest.service").With(
		zap.String("import_run_id", run.ID.String()),
		zap.String("kind", string(kind)),
		zap.String("source", source),
	)
	log.Info("import started")

	result, total, err := s.load(ctx, kind, r)
	run.Total = total
	run.Inserted = result.inserted
	run.Merged = result.merged
	run.Failed = result.failed
	run.Stats = datatypes.JSONMap{
		"batch_size": s.batchSize,
		"errors":     rowErrorsToAny(result.errors),
	}
	finished := s.clock.Now()
	run.FinishedAt = &finished
	run.Status = domain.ImportStatusCompleted
	if err != nil {
		run.Status = domain.ImportStatusFailed
		run.Error = err.Error()
	}
	if saveErr := s.finish(ctx, run, log); saveErr != nil {
		log.Error("import run not saved", zap.Error(saveErr))
		if err == nil {
			err = saveErr
		}
	}

	s.metrics.AddImportRows(string(kind), "inserted", result.inserted)
	s.metrics.AddImportRows(string(kind), "merged", result.merged)
	s.metrics.AddImportRows(string(kind), "failed", result.failed)

	if err != nil {
		log.Warn("import failed", zap.Error(err))
		return run, err
	}

	if result.inserted+result.merged > 0 && s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			log.Warn("report cache not invalidated", zap.Error(err))
		}
	}
	log.Info("import completed",
		zap.Int("total", run.Total),
		zap.Int("inserted", run.Inserted),
		zap.Int("merged", run.Merged),
		zap.Int("failed", run.Failed),
		zap.Duration("elapsed", finished.Sub(run.StartedAt)),
	)
	return run, nil
}

func (s *Service) load(ctx context.Context, kind domain.Kind, r io.Reader) (tally, int, error) {
	t, err := readTable(r)
	if err != nil {
		return tally{}, 0, err
	}
	total := len(t.rows)

	var (
		result tally
		bad    []domain.RowError
	)
	switch kind {
	case domain.KindCustomers:
		var rows []catalogdomain.Customer
		var lines []int
		rows, lines, bad, err = parseCustomers(t)
		if err == nil {
			result, err = writeBatches(ctx, s.db, rows, lines, s.batchSize, rejectDuplicate[catalogdomain.Customer])
		}
	case domain.KindOrders:
		var rows []catalogdomain.Order
		var lines []int
		rows, lines, bad, err = parseOrders(t)
		if err == nil {
			result, err = writeBatches(ctx, s.db, rows, lines, s.batchSize, rejectDuplicate[catalogdomain.Order])
		}
	case domain.KindLineItems:
		var rows []catalogdomain.OrderLineItem
		var lines []int
		rows, lines, bad, err = parseLineItems(t)
		for i := range rows {
			rows[i].ID = s.genID.Generate()
		}
		if err == nil {
			result, err = writeBatches(ctx, s.db, rows, lines, s.batchSize, rejectDuplicate[catalogdomain.OrderLineItem])
		}
	case domain.KindProducts:
		result, err = s.loadProducts(ctx, t, &bad)
	default:
		err = domain.ErrUnknownKind
	}
	for _, e := range bad {
		result.reject(e)
	}
	return result, total, err
}

func (s *Service) loadProducts(ctx context.Context, t table, bad *[]domain.RowError) (tally, error) {
	storedMeans, err := s.store.CategoryRatingMeans(ctx)
	if err != nil {
		return tally{}, err
	}
	rows, lines, rejected, err := parseProducts(t, storedMeans)
	*bad = rejected
	if err != nil {
		return tally{}, err
	}

	// Rows without an id share one id per name and category, so repeats in
	// the same file collide on insert and merge like repeats of stored rows.
	now := s.clock.Now()
	assigned := make(map[string]string)
	for i := range rows {
		rows[i].CreatedAt = now
		rows[i].UpdatedAt = now
		if rows[i].ProductID != "" {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(rows[i].ProductName)) + "\x00" + strings.ToLower(strings.TrimSpace(rows[i].Category))
		if id, ok := assigned[key]; ok {
			rows[i].ProductID = id
			continue
		}
		existing, err := s.store.FindProductByNameCategory(ctx, nil, rows[i].ProductName, rows[i].Category)
		if err != nil {
			return tally{}, err
		}
		if existing != nil {
			rows[i].ProductID = existing.ProductID
		} else {
			rows[i].ProductID = "P" + s.genID.Generate().String()
		}
		assigned[key] = rows[i].ProductID
	}

	return writeBatches(ctx, s.db, rows, lines, s.batchSize, s.mergeProduct)
}

// mergeProduct folds a product row into the stored product with the same id
// when name and category agree.
func (s *Service) mergeProduct(ctx context.Context, incoming catalogdomain.Product, insertErr error) (bool, error) {
	existing, err := s.store.FindProduct(ctx, nil, incoming.ProductID)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, fmt.Errorf("%w: %v", domain.ErrInvalidRow, insertErr)
	}
	if !sameProduct(*existing, incoming) {
		return false, fmt.Errorf("%w: product %s already exists as %q in %q",
			domain.ErrConflictingRow, incoming.ProductID, existing.ProductName, existing.Category)
	}

	merged := mergeProduct(*existing, incoming)
	merged.UpdatedAt = s.clock.Now()
	if err := s.store.UpdateProduct(ctx, nil, &merged); err != nil {
		return false, err
	}
	return true, nil
}

func rejectDuplicate[T any](_ context.Context, _ T, insertErr error) (bool, error) {
	if errors.Is(insertErr, gorm.ErrDuplicatedKey) {
		return false, domain.ErrDuplicateRow
	}
	return false, fmt.Errorf("%w: %v", domain.ErrInvalidRow, insertErr)
}

// finish saves the run. A completed run also stores its import.completed
// event, in the same transaction when the publisher supports it.
func (s *Service) finish(ctx context.Context, run domain.ImportRun, log *zap.Logger) error {
	if run.Status != domain.ImportStatusCompleted || s.events == nil {
		return s.db.WithContext(ctx).Save(&run).Error
	}

	payload := events.ImportCompletedPayload{
		ImportRunID: run.ID.String(),
		Kind:        string(run.Kind),
		Inserted:    run.Inserted,
		Merged:      run.Merged,
		Failed:      run.Failed,
	}
	event := events.Event{
		Type:      events.EventImportCompleted,
		Payload:   payload.ToMap(),
		DedupeKey: events.EventImportCompleted + ":" + run.ID.String(),
	}

	txp, ok := s.events.(events.TxPublisher)
	if !ok {
		if err := s.db.WithContext(ctx).Save(&run).Error; err != nil {
			return err
		}
		if err := s.events.Publish(ctx, event); err != nil {
			log.Warn("import event not stored", zap.Error(err))
		}
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&run).Error; err != nil {
			return err
		}
		return txp.PublishTx(ctx, tx, event)
	})
}

func rowErrorsToAny(rows []domain.RowError) []any {
	out := make([]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, map[string]any{"line": r.Line, "reason": r.Reason})
	}
	return out
}
