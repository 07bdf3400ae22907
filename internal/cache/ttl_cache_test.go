package cache

import (
	"context"
	"testing"
	"time"

	"github.com/rajesh196rsh/e-commerce/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type fakeNow struct{ t time.Time }

func (f *fakeNow) now() time.Time { return f.t }

func TestTTLCacheExpiresEntries(t *testing.T) {
	clock := &fakeNow{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewTTLCacheWithClock[string, int](clock.now)

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, 0)

	v, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)

	clock.t = clock.t.Add(2 * time.Minute)
	_, ok = c.Get("a")
	require.False(t, ok)

	v, ok = c.Get("b")
	require.True(t, ok)
	require.Equal(t, 2, v)

	c.Clear()
	require.Equal(t, 0, c.Len())
}

func TestNilTTLCacheIsSafe(t *testing.T) {
	var c *TTLCache[string, int]
	c.Set("a", 1, time.Second)
	_, ok := c.Get("a")
	require.False(t, ok)
	c.Delete("a")
	c.Clear()
	require.Equal(t, 0, c.Len())
}

func TestMemoryReportCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryReportCache(time.Minute, nil)

	_, gen, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, c.Set(ctx, gen, "k", []byte("payload")))
	value, _, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("payload"), value)

	require.NoError(t, c.Invalidate(ctx))
	_, _, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryReportCacheDropsWriteAfterInvalidate(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryReportCache(time.Minute, nil)

	_, gen, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Invalidate(ctx))
	require.NoError(t, c.Set(ctx, gen, "k", []byte("computed before invalidate")))

	_, next, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
	require.Greater(t, next, gen)

	require.NoError(t, c.Set(ctx, next, "k", []byte("fresh")))
	value, _, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("fresh"), value)
}

func TestNewReportCacheBackends(t *testing.T) {
	cfg := config.Default()

	cfg.Cache.Backend = config.CacheBackendNone
	c, err := NewReportCache(cfg)
	require.NoError(t, err)
	require.NoError(t, c.Set(context.Background(), 0, "k", []byte("v")))
	_, _, ok, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	require.False(t, ok)

	cfg.Cache.Backend = "memcached"
	_, err = NewReportCache(cfg)
	require.ErrorIs(t, err, config.ErrInvalidCacheBackend)
}

// Requires a running Redis on localhost; skipped otherwise.
func TestRedisReportCacheIntegration(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 15})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("redis not available")
	}

	c := NewRedisReportCache(client, "spendlens:test:", time.Minute)
	defer c.Close()

	_, gen, _, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, gen, "k", []byte("payload")))
	value, _, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("payload"), value)

	require.NoError(t, c.Invalidate(ctx))
	require.NoError(t, c.Set(ctx, gen, "k", []byte("stale")))
	_, _, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}
