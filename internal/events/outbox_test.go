package events

import (
	"context"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupOutbox(t *testing.T) (*Outbox, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(memoryDSN(t)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Record{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return NewOutbox(db, node), db
}

func TestOutboxDedupesByKey(t *testing.T) {
	outbox, db := setupOutbox(t)
	ctx := context.Background()

	event := Event{
		Type:      EventReportGenerated,
		Payload:   ReportGeneratedPayload{Report: "top_customers", Checksum: "abc", Limit: 5, Rows: 1}.ToMap(),
		DedupeKey: "report:abc",
	}
	require.NoError(t, outbox.Publish(ctx, event))
	require.NoError(t, outbox.Publish(ctx, event))

	var count int64
	require.NoError(t, db.Model(&Record{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestOutboxWithoutDedupeKeyAlwaysInserts(t *testing.T) {
	outbox, _ := setupOutbox(t)
	ctx := context.Background()

	payload := ImportCompletedPayload{ImportRunID: "1", Kind: "products", Inserted: 3}.ToMap()
	require.NoError(t, outbox.Publish(ctx, Event{Type: EventImportCompleted, Payload: payload}))
	require.NoError(t, outbox.Publish(ctx, Event{Type: EventImportCompleted, Payload: payload}))

	pending, err := outbox.Pending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	require.Equal(t, "products", pending[0].Payload["kind"])

	require.NoError(t, outbox.MarkPublished(ctx, pending[0].ID))
	pending, err = outbox.Pending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
}

func TestOutboxRejectsMissingType(t *testing.T) {
	outbox, _ := setupOutbox(t)
	require.ErrorIs(t, outbox.Publish(context.Background(), Event{Type: "  "}), ErrMissingEventType)

	var nilOutbox *Outbox
	require.ErrorIs(t, nilOutbox.Publish(context.Background(), Event{Type: "x"}), ErrOutboxUnavailable)
}

func memoryDSN(t *testing.T) string {
	return "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
}
