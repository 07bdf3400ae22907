package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	analyticsdomain "github.com/rajesh196rsh/e-commerce/internal/analytics/domain"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	require.NoError(t, root.Execute(), out.String())
	return out.String()
}

func TestParseAsOf(t *testing.T) {
	at, err := parseAsOf("2024-06-01")
	require.NoError(t, err)
	require.True(t, at.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))

	_, err = parseAsOf("June 1st")
	require.ErrorIs(t, err, analyticsdomain.ErrInvalidParameter)
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	var names []string
	for _, c := range newRootCommand().Commands() {
		names = append(names, c.Name())
	}
	require.Subset(t, names, []string{"report", "categories", "import", "schedule", "seed", "events"})
}

func TestSeedThenReport(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "file:"+filepath.Join(dir, "spendlens.db"))
	t.Setenv("CACHE_BACKEND", "memory")
	t.Setenv("LOG_LEVEL", "error")
	metricsPath := filepath.Join(dir, "spendlens.prom")
	t.Setenv("METRICS_TEXTFILE", metricsPath)

	require.Contains(t, execute(t, "seed"), "demo data ready")

	out := execute(t, "report", "--format", "json", "--limit", "2")
	var doc struct {
		Customers []analyticsdomain.SummaryRow `json:"customers"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc), out)
	require.Len(t, doc.Customers, 2)
	require.True(t, doc.Customers[0].TotalSpent.GreaterThanOrEqual(doc.Customers[1].TotalSpent))

	exported, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	require.Contains(t, string(exported), `spendlens_report_runs_total{env="development",report="top_customers",result="success",service="spendlens"}`)

	csvPath := filepath.Join(dir, "categories.csv")
	execute(t, "categories", "--out", csvPath)

	importPath := filepath.Join(dir, "customers.csv")
	require.NoError(t, writeFile(importPath, "customer_id,customer_name,email\nCUST-0100,New Person,new@example.com\n"))
	require.True(t, strings.Contains(execute(t, "import", "customers", importPath), "1 inserted"))

	pending := execute(t, "events", "--ack")
	require.Contains(t, pending, `"type":"report.generated"`)
	require.Contains(t, pending, `"type":"import.completed"`)
	require.Empty(t, strings.TrimSpace(execute(t, "events")))
}
