package dataset

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// LoadFunc builds a store for a cache miss.
type LoadFunc func(ctx context.Context) (*Store, error)

// StoreCache caches stores by source identity. It is the only shared
// mutable state in the pipeline: concurrent first-time loads of the
// same key are deduplicated so the expensive parse runs at most once
// per distinct source. Entries live for the process lifetime.
type StoreCache struct {
	mu     sync.RWMutex
	stores map[string]*Store
	group  singleflight.Group
	logger *slog.Logger
}

// NewStoreCache creates an empty process-scoped store cache.
func NewStoreCache(logger *slog.Logger) *StoreCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &StoreCache{
		stores: make(map[string]*Store),
		logger: logger.With(slog.String("component", "store_cache")),
	}
}

// GetOrLoad returns the cached store for key, invoking load on a miss.
// Concurrent callers for the same key share a single in-flight load.
// Failed loads are not cached; the next caller retries.
func (c *StoreCache) GetOrLoad(ctx context.Context, key string, load LoadFunc) (*Store, error) {
	c.mu.RLock()
	store, ok := c.stores[key]
	c.mu.RUnlock()
	if ok {
		c.logger.DebugContext(ctx, "store cache hit", slog.String("key", key))
		return store, nil
	}

	v, err, shared := c.group.Do(key, func() (interface{}, error) {
		// Re-check under the flight: another caller may have
		// populated the cache between the RUnlock and Do.
		c.mu.RLock()
		cached, ok := c.stores[key]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}

		built, err := load(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.stores[key] = built
		c.mu.Unlock()
		return built, nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "store loaded",
		slog.String("key", key),
		slog.Bool("deduplicated", shared),
		slog.Int("records", v.(*Store).Len()))

	return v.(*Store), nil
}

// Get returns the cached store for key without loading.
func (c *StoreCache) Get(key string) (*Store, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	store, ok := c.stores[key]
	return store, ok
}

// Len returns the number of cached stores.
func (c *StoreCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.stores)
}
