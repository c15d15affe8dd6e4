package capability

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Cache is a read-through response store for provider invocations. Entries
// only short-circuit duplicate calls within the TTL; the cache is never
// authoritative state.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string, ttl time.Duration)
}

// MemoryCache is the in-process default.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: map[string]memoryEntry{}, now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.now().After(e.expiresAt) {
		// Evict on read so stale entries do not accumulate.
		delete(c.entries, key)
		return "", false
	}
	return e.value, true
}

func (c *MemoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = memoryEntry{value: value, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

// Cached wraps a provider with read-through memoization of successful
// results. Errors are never cached.
type Cached struct {
	inner Provider
	cache Cache
	ttl   time.Duration
}

func WithCache(p Provider, cache Cache, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Cached{inner: p, cache: cache, ttl: ttl}
}

func (c *Cached) Name() string { return c.inner.Name() }

func (c *Cached) Invoke(ctx context.Context, query string, opts Options) (string, error) {
	key := cacheKey(c.inner.Name(), query)
	if v, ok := c.cache.Get(ctx, key); ok {
		return v, nil
	}

	out, err := c.inner.Invoke(ctx, query, opts)
	if err != nil {
		return "", err
	}
	c.cache.Set(ctx, key, out, c.ttl)
	return out, nil
}

func cacheKey(provider, query string) string {
	sum := sha256.Sum256([]byte(provider + "\x00" + query))
	return "capability:" + hex.EncodeToString(sum[:])
}
