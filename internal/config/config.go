package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvConfigFile = "SPENDLENS_CONFIG"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
	CacheBackendNone   = "none"
)

var (
	ErrInvalidDriver       = errors.New("invalid_database_driver")
	ErrMissingDSN          = errors.New("missing_database_dsn")
	ErrInvalidCacheBackend = errors.New("invalid_cache_backend")
	ErrInvalidReportLimit  = errors.New("invalid_report_limit")
	ErrInvalidBatchSize    = errors.New("invalid_import_batch_size")
)

// Config holds process configuration.
type Config struct {
	AppName     string `yaml:"app_name"`
	AppVersion  string `yaml:"app_version"`
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`

	Database DatabaseConfig `yaml:"database"`
	Report   ReportConfig   `yaml:"report"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Cache    CacheConfig    `yaml:"cache"`
	Tracing  TracingConfig  `yaml:"tracing"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Import   ImportConfig   `yaml:"import"`
	Schedule ScheduleConfig `yaml:"schedule"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// ReportConfig carries defaults applied when a caller omits a parameter.
type ReportConfig struct {
	Limit  int    `yaml:"limit"`
	Window string `yaml:"window"`
}

type PipelineConfig struct {
	Workers int `yaml:"workers"`
}

type CacheConfig struct {
	Backend   string        `yaml:"backend"`
	TTL       time.Duration `yaml:"ttl"`
	RedisAddr string        `yaml:"redis_addr"`
	RedisDB   int           `yaml:"redis_db"`
	KeyPrefix string        `yaml:"key_prefix"`
}

type TracingConfig struct {
	Enabled          bool    `yaml:"enabled"`
	ExporterEndpoint string  `yaml:"exporter_endpoint"`
	ExporterProtocol string  `yaml:"exporter_protocol"`
	SamplingRatio    float64 `yaml:"sampling_ratio"`
}

// MetricsConfig selects where collected metrics go. Prometheus collectors are
// flushed to a textfile and/or a Pushgateway when a command finishes; otel
// instruments are exported over OTLP when OTLPEnabled is set.
type MetricsConfig struct {
	TextfilePath   string        `yaml:"textfile_path"`
	PushgatewayURL string        `yaml:"pushgateway_url"`
	Job            string        `yaml:"job"`
	OTLPEnabled    bool          `yaml:"otlp_enabled"`
	OTLPEndpoint   string        `yaml:"otlp_endpoint"`
	OTLPInterval   time.Duration `yaml:"otlp_interval"`
}

type ImportConfig struct {
	BatchSize int `yaml:"batch_size"`
}

type ScheduleConfig struct {
	Interval   time.Duration `yaml:"interval"`
	OutputPath string        `yaml:"output_path"`
	Format     string        `yaml:"format"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		AppName:     "spendlens",
		AppVersion:  "dev",
		Environment: "development",
		LogLevel:    "info",
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			DSN:    "file:spendlens.db?_foreign_keys=on",
		},
		Report: ReportConfig{
			Limit:  5,
			Window: "2y",
		},
		Pipeline: PipelineConfig{
			Workers: 4,
		},
		Cache: CacheConfig{
			Backend:   CacheBackendMemory,
			TTL:       time.Minute,
			KeyPrefix: "spendlens:report:",
		},
		Tracing: TracingConfig{
			ExporterProtocol: "grpc",
			SamplingRatio:    0.1,
		},
		Metrics: MetricsConfig{
			Job:          "spendlens",
			OTLPInterval: 15 * time.Second,
		},
		Import: ImportConfig{
			BatchSize: 500,
		},
		Schedule: ScheduleConfig{
			Interval:   time.Hour,
			OutputPath: "summary_report.csv",
			Format:     "csv",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file named by
// SPENDLENS_CONFIG, and environment variables, in that order of precedence.
func Load() (Config, error) {
	cfg := Default()

	if path := strings.TrimSpace(os.Getenv(EnvConfigFile)); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Environment, "APP_ENV")
	setString(&c.AppVersion, "APP_VERSION")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.DSN, "DATABASE_URL")
	setString(&c.Report.Window, "REPORT_WINDOW")
	setString(&c.Cache.Backend, "CACHE_BACKEND")
	setString(&c.Cache.RedisAddr, "REDIS_ADDR")
	setString(&c.Cache.KeyPrefix, "CACHE_KEY_PREFIX")
	setString(&c.Tracing.ExporterEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setString(&c.Tracing.ExporterProtocol, "OTEL_EXPORTER_OTLP_PROTOCOL")
	setString(&c.Schedule.OutputPath, "SCHEDULE_OUTPUT_PATH")
	setString(&c.Schedule.Format, "SCHEDULE_FORMAT")
	setString(&c.Metrics.TextfilePath, "METRICS_TEXTFILE")
	setString(&c.Metrics.PushgatewayURL, "METRICS_PUSHGATEWAY_URL")
	setString(&c.Metrics.Job, "METRICS_JOB")
	setString(&c.Metrics.OTLPEndpoint, "OTEL_EXPORTER_OTLP_METRICS_ENDPOINT")

	if err := setInt(&c.Report.Limit, "REPORT_LIMIT"); err != nil {
		return err
	}
	if err := setInt(&c.Pipeline.Workers, "PIPELINE_WORKERS"); err != nil {
		return err
	}
	if err := setInt(&c.Cache.RedisDB, "REDIS_DB"); err != nil {
		return err
	}
	if err := setInt(&c.Import.BatchSize, "IMPORT_BATCH_SIZE"); err != nil {
		return err
	}
	if err := setDuration(&c.Cache.TTL, "CACHE_TTL"); err != nil {
		return err
	}
	if err := setDuration(&c.Schedule.Interval, "SCHEDULE_INTERVAL"); err != nil {
		return err
	}
	if err := setFloat(&c.Tracing.SamplingRatio, "OTEL_SAMPLING_RATIO"); err != nil {
		return err
	}
	if err := setDuration(&c.Metrics.OTLPInterval, "OTEL_METRICS_INTERVAL"); err != nil {
		return err
	}
	if raw, ok := lookup("OTEL_METRICS_ENABLED"); ok {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("OTEL_METRICS_ENABLED: %w", err)
		}
		c.Metrics.OTLPEnabled = enabled
	}
	if raw, ok := lookup("OTEL_ENABLED"); ok {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("OTEL_ENABLED: %w", err)
		}
		c.Tracing.Enabled = enabled
	}
	return nil
}

func (c *Config) normalize() {
	c.Environment = strings.ToLower(strings.TrimSpace(c.Environment))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	c.Schedule.Format = strings.ToLower(strings.TrimSpace(c.Schedule.Format))
	if c.Pipeline.Workers <= 0 {
		c.Pipeline.Workers = 1
	}
}

// Validate rejects configurations the process cannot run with.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDriver, c.Database.Driver)
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		return ErrMissingDSN
	}
	switch c.Cache.Backend {
	case CacheBackendMemory, CacheBackendRedis, CacheBackendNone:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidCacheBackend, c.Cache.Backend)
	}
	if c.Report.Limit < 0 {
		return ErrInvalidReportLimit
	}
	if c.Import.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func lookup(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

func setString(dst *string, key string) {
	if value, ok := lookup(key); ok {
		*dst = value
	}
}

func setInt(dst *int, key string) error {
	value, ok := lookup(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = parsed
	return nil
}

func setFloat(dst *float64, key string) error {
	value, ok := lookup(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = parsed
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	value, ok := lookup(key)
	if !ok {
		return nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = parsed
	return nil
}
