package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

func TestExporterWritesTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAnalyticsMetricsWithRegistry(reg, Config{ServiceName: "spendlens-test", Environment: "test"})
	m.ObserveReport("top_customers", "success", 5*time.Millisecond)
	m.AddImportRows("customers", "inserted", 3)

	path := filepath.Join(t.TempDir(), "spendlens.prom")
	exp := NewExporter(Config{TextfilePath: path}, reg)
	if err := exp.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	out := string(raw)
	for _, want := range []string{
		`spendlens_report_runs_total{env="test",report="top_customers",result="success",service="spendlens-test"} 1`,
		`spendlens_import_rows_total{env="test",kind="customers",result="inserted",service="spendlens-test"} 3`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in textfile:\n%s", want, out)
		}
	}
}

func TestExporterPushesToGateway(t *testing.T) {
	var (
		mu   sync.Mutex
		path string
		body string
	)
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		mu.Lock()
		path = r.URL.Path
		body = string(raw)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer gateway.Close()

	reg := prometheus.NewRegistry()
	m := NewAnalyticsMetricsWithRegistry(reg, Config{ServiceName: "spendlens-test", Environment: "test"})
	m.SetReportRows(4)

	exp := NewExporter(Config{PushgatewayURL: gateway.URL, Job: "nightly"}, reg)
	if err := exp.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if path != "/metrics/job/nightly" {
		t.Fatalf("unexpected push path %q", path)
	}
	if !strings.Contains(body, "spendlens_report_rows") {
		t.Fatalf("pushed body missing report rows gauge")
	}
}

func TestExporterWithoutTargetsIsNil(t *testing.T) {
	exp := NewExporter(Config{}, prometheus.NewRegistry())
	if exp != nil {
		t.Fatalf("expected nil exporter")
	}
	if err := exp.Flush(context.Background()); err != nil {
		t.Fatalf("nil flush: %v", err)
	}
}

func TestNewMeterProviderInstallsGlobal(t *testing.T) {
	prev := otel.GetMeterProvider()
	t.Cleanup(func() { otel.SetMeterProvider(prev) })

	provider, err := NewMeterProvider(nil, Config{ServiceName: "spendlens-test"}, zap.NewNop())
	if err != nil {
		t.Fatalf("meter provider: %v", err)
	}
	defer provider.Shutdown(context.Background())

	if otel.GetMeterProvider() != provider {
		t.Fatalf("global meter provider not installed")
	}
}
