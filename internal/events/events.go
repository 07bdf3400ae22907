package events

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Analytics event types.
const (
	EventReportGenerated = "report.generated"
	EventImportCompleted = "import.completed"
)

// Record is a stored outbox row.
type Record struct {
	ID        snowflake.ID      `gorm:"primaryKey"`
	EventType string            `gorm:"type:text;not null;index"`
	Payload   datatypes.JSONMap `gorm:"type:json;not null"`
	DedupeKey *string           `gorm:"type:text;uniqueIndex:ux_analytics_events_dedupe_key"`
	Published bool              `gorm:"not null;default:false"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Record) TableName() string { return "analytics_events" }

// ReportGeneratedPayload describes a computed report.
type ReportGeneratedPayload struct {
	Report   string `json:"report"`
	Checksum string `json:"checksum"`
	RunID    string `json:"run_id,omitempty"`
	AsOf     string `json:"as_of,omitempty"`
	Window   string `json:"window,omitempty"`
	Limit    int    `json:"limit"`
	Rows     int    `json:"rows"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p ReportGeneratedPayload) ToMap() map[string]any {
	payload := map[string]any{
		"report":   p.Report,
		"checksum": p.Checksum,
		"limit":    p.Limit,
		"rows":     p.Rows,
	}
	if p.RunID != "" {
		payload["run_id"] = p.RunID
	}
	if p.AsOf != "" {
		payload["as_of"] = p.AsOf
	}
	if p.Window != "" {
		payload["window"] = p.Window
	}
	return payload
}

// ImportCompletedPayload summarizes a finished import run.
type ImportCompletedPayload struct {
	ImportRunID string `json:"import_run_id"`
	Kind        string `json:"kind"`
	Inserted    int    `json:"inserted"`
	Merged      int    `json:"merged"`
	Failed      int    `json:"failed"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p ImportCompletedPayload) ToMap() map[string]any {
	return map[string]any{
		"import_run_id": p.ImportRunID,
		"kind":          p.Kind,
		"inserted":      p.Inserted,
		"merged":        p.Merged,
		"failed":        p.Failed,
	}
}
