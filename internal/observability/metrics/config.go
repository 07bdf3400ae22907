package metrics

import (
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// Config labels every collector with the emitting service and names the
// export targets.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string

	TextfilePath   string
	PushgatewayURL string
	Job            string

	OTLPEnabled  bool
	OTLPEndpoint string
	OTLPInterval time.Duration
}

var highCardinalityKeys = map[attribute.Key]struct{}{
	"customer_id": {},
	"order_id":    {},
	"product_id":  {},
	"run_id":      {},
}

// FilterAttributes drops attribute keys that would explode metric cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, drop := highCardinalityKeys[attr.Key]; drop {
			continue
		}
		if strings.TrimSpace(attr.Value.Emit()) == "" {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
