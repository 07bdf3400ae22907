package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rajesh196rsh/e-commerce/internal/config"
	"github.com/redis/go-redis/v9"
)

var ErrCacheUnavailable = errors.New("cache_unavailable")

// ReportCache stores rendered report payloads keyed by request checksum.
// Get also returns the generation the lookup ran under; Set drops the value
// when the cache has been invalidated since that generation.
type ReportCache interface {
	Get(ctx context.Context, key string) (value []byte, gen int64, ok bool, err error)
	Set(ctx context.Context, gen int64, key string, value []byte) error
	// Invalidate drops every cached report.
	Invalidate(ctx context.Context) error
	Close() error
}

// NewReportCache selects the backend named by cfg.Cache.Backend.
func NewReportCache(cfg config.Config) (ReportCache, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Cache.Backend)) {
	case config.CacheBackendMemory, "":
		return NewMemoryReportCache(cfg.Cache.TTL, nil), nil
	case config.CacheBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr: cfg.Cache.RedisAddr,
			DB:   cfg.Cache.RedisDB,
		})
		return NewRedisReportCache(client, cfg.Cache.KeyPrefix, cfg.Cache.TTL), nil
	case config.CacheBackendNone:
		return noopReportCache{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", config.ErrInvalidCacheBackend, cfg.Cache.Backend)
	}
}

// MemoryReportCache keeps reports in process memory.
type MemoryReportCache struct {
	mu      sync.Mutex
	version int64
	items   *TTLCache[string, []byte]
	ttl     time.Duration
}

func NewMemoryReportCache(ttl time.Duration, now func() time.Time) *MemoryReportCache {
	items := NewTTLCache[string, []byte]()
	if now != nil {
		items = NewTTLCacheWithClock[string, []byte](now)
	}
	return &MemoryReportCache{items: items, ttl: ttl}
}

func (c *MemoryReportCache) Get(_ context.Context, key string) ([]byte, int64, bool, error) {
	c.mu.Lock()
	gen := c.version
	c.mu.Unlock()
	value, ok := c.items.Get(key)
	return value, gen, ok, nil
}

func (c *MemoryReportCache) Set(_ context.Context, gen int64, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.version {
		return nil
	}
	c.items.Set(key, value, c.ttl)
	return nil
}

func (c *MemoryReportCache) Invalidate(context.Context) error {
	c.mu.Lock()
	c.version++
	c.items.Clear()
	c.mu.Unlock()
	return nil
}

func (c *MemoryReportCache) Close() error { return nil }

// RedisReportCache shares reports across processes. Keys are namespaced by a
// generation counter; Invalidate bumps the generation so older entries become
// unreachable and age out through their TTL.
type RedisReportCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisReportCache(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisReportCache {
	return &RedisReportCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisReportCache) generationKey() string {
	return c.prefix + "generation"
}

func (c *RedisReportCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, c.generationKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return gen, nil
}

func (c *RedisReportCache) key(gen int64, key string) string {
	return fmt.Sprintf("%s%d:%s", c.prefix, gen, key)
}

func (c *RedisReportCache) Get(ctx context.Context, key string) ([]byte, int64, bool, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return nil, 0, false, err
	}
	value, err := c.client.Get(ctx, c.key(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, gen, false, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return value, gen, true, nil
}

// Set writes under gen. A write for an invalidated generation lands on a key
// no reader computes and expires with its TTL.
func (c *RedisReportCache) Set(ctx context.Context, gen int64, key string, value []byte) error {
	if err := c.client.Set(ctx, c.key(gen, key), value, c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}

func (c *RedisReportCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, c.generationKey()).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}

func (c *RedisReportCache) Close() error {
	return c.client.Close()
}

type noopReportCache struct{}

func (noopReportCache) Get(context.Context, string) ([]byte, int64, bool, error) {
	return nil, 0, false, nil
}
func (noopReportCache) Set(context.Context, int64, string, []byte) error { return nil }
func (noopReportCache) Invalidate(context.Context) error                 { return nil }
func (noopReportCache) Close() error                                     { return nil }
