package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type AnalyticsMetrics struct {
	reportRuns     *prometheus.CounterVec
	reportDuration *prometheus.HistogramVec
	reportRows     prometheus.Gauge
	cacheLookups   *prometheus.CounterVec
	importRows     *prometheus.CounterVec
}

var (
	analyticsMetricsOnce sync.Once
	analyticsMetrics     *AnalyticsMetrics
)

func Analytics() *AnalyticsMetrics {
	return AnalyticsWithConfig(Config{})
}

func AnalyticsWithConfig(cfg Config) *AnalyticsMetrics {
	analyticsMetricsOnce.Do(func() {
		analyticsMetrics = newAnalyticsMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return analyticsMetrics
}

// NewAnalyticsMetricsWithRegistry registers collectors on a caller-owned registry.
func NewAnalyticsMetricsWithRegistry(registerer prometheus.Registerer, cfg Config) *AnalyticsMetrics {
	return newAnalyticsMetrics(registerer, cfg)
}

func newAnalyticsMetrics(registerer prometheus.Registerer, cfg Config) *AnalyticsMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "spendlens"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	reportRuns := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "spendlens_report_runs_total",
			Help:        "Total analytics report runs by report and result.",
			ConstLabels: constLabels,
		},
		[]string{"report", "result"}, // success | invalid | integrity | failed
	)

	reportDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:        "spendlens_report_duration_seconds",
			Help:        "Wall time spent computing an analytics report.",
			Buckets:     []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
			ConstLabels: constLabels,
		},
		[]string{"report"},
	)

	reportRows := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name:        "spendlens_report_rows",
			Help:        "Rows returned by the most recent top customers report.",
			ConstLabels: constLabels,
		},
	)

	cacheLookups := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "spendlens_report_cache_lookups_total",
			Help:        "Report cache lookups by outcome.",
			ConstLabels: constLabels,
		},
		[]string{"outcome"}, // hit | miss
	)

	importRows := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "spendlens_import_rows_total",
			Help:        "Imported CSV rows by kind and result.",
			ConstLabels: constLabels,
		},
		[]string{"kind", "result"}, // written | merged | failed
	)

	registerer.MustRegister(
		reportRuns,
		reportDuration,
		reportRows,
		cacheLookups,
		importRows,
	)

	return &AnalyticsMetrics{
		reportRuns:     reportRuns,
		reportDuration: reportDuration,
		reportRows:     reportRows,
		cacheLookups:   cacheLookups,
		importRows:     importRows,
	}
}

func (m *AnalyticsMetrics) ObserveReport(report, result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.reportRuns.WithLabelValues(report, result).Inc()
	m.reportDuration.WithLabelValues(report).Observe(duration.Seconds())
}

func (m *AnalyticsMetrics) SetReportRows(rows int) {
	if m == nil {
		return
	}
	m.reportRows.Set(float64(rows))
}

func (m *AnalyticsMetrics) IncCacheLookup(hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.cacheLookups.WithLabelValues(outcome).Inc()
}

func (m *AnalyticsMetrics) AddImportRows(kind, result string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.importRows.WithLabelValues(kind, result).Add(float64(count))
}
