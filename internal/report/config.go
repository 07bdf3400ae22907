package report

import (
	"time"

	"github.com/rajesh196rsh/e-commerce/internal/analytics/domain"
	"github.com/rajesh196rsh/e-commerce/internal/config"
)

type Kind string

const (
	KindTopCustomers    Kind = "top_customers"
	KindCategorySummary Kind = "category_summary"
)

// Config controls the scheduled report worker loop.
type Config struct {
	Kind       Kind
	Interval   time.Duration
	OutputPath string
	Format     Format
	Limit      int
	Window     domain.Window
	RunTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Kind:       KindTopCustomers,
		Interval:   time.Hour,
		OutputPath: "summary_report.csv",
		Format:     FormatCSV,
		Limit:      domain.DefaultLimit,
		Window:     domain.Years(2),
		RunTimeout: 5 * time.Minute,
	}
}

// NewConfig derives the worker config from process configuration.
func NewConfig(cfg config.Config) (Config, error) {
	format, err := ParseFormat(cfg.Schedule.Format)
	if err != nil {
		return Config{}, err
	}
	window, err := domain.ParseWindow(cfg.Report.Window)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Kind:       KindTopCustomers,
		Interval:   cfg.Schedule.Interval,
		OutputPath: cfg.Schedule.OutputPath,
		Format:     format,
		Limit:      cfg.Report.Limit,
		Window:     window,
	}.withDefaults(), nil
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.Kind == "" {
		c.Kind = defaults.Kind
	}
	if c.Interval <= 0 {
		c.Interval = defaults.Interval
	}
	if c.OutputPath == "" {
		c.OutputPath = defaults.OutputPath
	}
	if c.Format == "" {
		c.Format = defaults.Format
	}
	if c.Limit < 0 {
		c.Limit = defaults.Limit
	}
	if c.Window.IsZero() {
		c.Window = defaults.Window
	}
	if c.RunTimeout <= 0 {
		c.RunTimeout = defaults.RunTimeout
	}
	return c
}
