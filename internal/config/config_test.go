package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvConfigFile, "")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, 5, cfg.Report.Limit)
	assert.Equal(t, "2y", cfg.Report.Window)
	assert.Equal(t, CacheBackendMemory, cfg.Cache.Backend)
	assert.Equal(t, 500, cfg.Import.BatchSize)
	assert.False(t, cfg.IsProduction())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spendlens.yaml")
	body := []byte(`
environment: Production
database:
  driver: postgres
  dsn: postgres://file@localhost/spend
report:
  limit: 10
  window: 18mo
cache:
  ttl: 30s
`)
	require.NoError(t, os.WriteFile(path, body, 0o600))

	t.Setenv(EnvConfigFile, path)
	t.Setenv("DATABASE_URL", "postgres://env@localhost/spend")
	t.Setenv("PIPELINE_WORKERS", "8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "postgres://env@localhost/spend", cfg.Database.DSN)
	assert.Equal(t, 10, cfg.Report.Limit)
	assert.Equal(t, "18mo", cfg.Report.Window)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 8, cfg.Pipeline.Workers)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv(EnvConfigFile, "")

	t.Run("driver", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "oracle")
		_, err := Load()
		require.ErrorIs(t, err, ErrInvalidDriver)
	})

	t.Run("limit", func(t *testing.T) {
		t.Setenv("REPORT_LIMIT", "-1")
		_, err := Load()
		require.ErrorIs(t, err, ErrInvalidReportLimit)
	})

	t.Run("cache backend", func(t *testing.T) {
		t.Setenv("CACHE_BACKEND", "memcached")
		_, err := Load()
		require.ErrorIs(t, err, ErrInvalidCacheBackend)
	})

	t.Run("unparsable int", func(t *testing.T) {
		t.Setenv("IMPORT_BATCH_SIZE", "many")
		_, err := Load()
		require.Error(t, err)
	})
}
