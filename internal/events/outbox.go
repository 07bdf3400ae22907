package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/rajesh196rsh/e-commerce/internal/observability/tracing"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrOutboxUnavailable  = errors.New("outbox_unavailable")
	ErrMissingEventType   = errors.New("missing_event_type")
	ErrMissingTransaction = errors.New("missing_transaction")
)

// Event describes an analytics event to store in the outbox.
type Event struct {
	Type      string
	Payload   map[string]any
	DedupeKey string
}

// Publisher stores events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// TxPublisher stores events inside a caller-owned transaction.
type TxPublisher interface {
	Publisher
	PublishTx(ctx context.Context, tx *gorm.DB, event Event) error
}

// Outbox inserts analytics events into the analytics_events table.
type Outbox struct {
	db    *gorm.DB
	genID *snowflake.Node
	now   func() time.Time
}

func NewOutbox(db *gorm.DB, genID *snowflake.Node) *Outbox {
	return &Outbox{db: db, genID: genID, now: time.Now}
}

// Publish stores an event using the default database connection.
func (o *Outbox) Publish(ctx context.Context, event Event) error {
	if o == nil {
		return ErrOutboxUnavailable
	}
	return o.publish(ctx, o.db, event)
}

// PublishTx stores an event using an existing transaction.
func (o *Outbox) PublishTx(ctx context.Context, tx *gorm.DB, event Event) error {
	if tx == nil {
		return ErrMissingTransaction
	}
	return o.publish(ctx, tx, event)
}

func (o *Outbox) publish(ctx context.Context, db *gorm.DB, event Event) error {
	if o == nil || db == nil || o.genID == nil {
		return ErrOutboxUnavailable
	}
	name := strings.TrimSpace(event.Type)
	if name == "" {
		return ErrMissingEventType
	}

	payload := datatypes.JSONMap{}
	for key, value := range event.Payload {
		if strings.TrimSpace(key) == "" {
			continue
		}
		payload[key] = value
	}
	if carrier := tracing.CarrierFromContext(ctx); len(carrier) > 0 {
		trace := make(map[string]any, len(carrier))
		for k, v := range carrier {
			trace[k] = v
		}
		payload["trace"] = trace
	}

	dedupe := strings.TrimSpace(event.DedupeKey)
	var dedupeValue any
	if dedupe != "" {
		dedupeValue = dedupe
	}

	return db.WithContext(ctx).Exec(
		`INSERT INTO analytics_events (id, event_type, payload, dedupe_key, published, created_at)
		 VALUES (?, ?, ?, ?, false, ?)
		 ON CONFLICT (dedupe_key) DO NOTHING`,
		o.genID.Generate(),
		name,
		payload,
		dedupeValue,
		o.now().UTC(),
	).Error
}

// Pending lists unpublished events, oldest first.
func (o *Outbox) Pending(ctx context.Context, limit int) ([]Record, error) {
	if o == nil || o.db == nil {
		return nil, ErrOutboxUnavailable
	}
	var records []Record
	err := o.db.WithContext(ctx).
		Where("published = ?", false).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// MarkPublished flags events as delivered.
func (o *Outbox) MarkPublished(ctx context.Context, ids ...snowflake.ID) error {
	if o == nil || o.db == nil {
		return ErrOutboxUnavailable
	}
	if len(ids) == 0 {
		return nil
	}
	return o.db.WithContext(ctx).
		Model(&Record{}).
		Where("id IN ?", ids).
		Update("published", true).Error
}
