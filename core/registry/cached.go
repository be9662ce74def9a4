package registry

import (
	"context"
	"sync"
	"time"

	"enchlib/core/tables"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// cacheEntry is one loaded catalogue.
type cacheEntry struct {
	catalog Catalog
	built   time.Time
	ttl     time.Duration
}

// isExpired returns true if the entry has outlived its TTL.
func (e *cacheEntry) isExpired() bool {
	if e.ttl == 0 {
		return true // No caching
	}
	return time.Since(e.built) > e.ttl
}

// Cached is a Registry over a Source that keeps the loaded catalogue for a
// TTL. Concurrent loads after expiry are collapsed into one.
type Cached struct {
	source Source
	ttl    time.Duration
	logger *zap.Logger

	mu    sync.RWMutex
	entry *cacheEntry
	sf    singleflight.Group
}

// NewCached wraps source. A zero ttl loads on every call.
func NewCached(source Source, ttl time.Duration, logger *zap.Logger) *Cached {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cached{source: source, ttl: ttl, logger: logger}
}

// Source returns the wrapped source.
func (c *Cached) Source() Source {
	return c.source
}

// Catalog returns the cached catalogue, loading it if missing or expired.
// Callers must not modify the returned map.
func (c *Cached) Catalog(ctx context.Context) (Catalog, error) {
	// Fast path: cache exists and is fresh
	c.mu.RLock()
	entry := c.entry
	c.mu.RUnlock()

	if entry != nil && !entry.isExpired() {
		return entry.catalog, nil
	}

	// Slow path: one loader, everyone else waits for its result
	result, err, _ := c.sf.Do("catalog", func() (any, error) {
		c.mu.RLock()
		entry := c.entry
		c.mu.RUnlock()
		if entry != nil && !entry.isExpired() {
			return entry.catalog, nil
		}

		start := time.Now()
		cat, err := c.source.Load(ctx)
		if err != nil {
			return nil, err
		}
		c.logger.Debug("Registry loaded",
			zap.String("source", c.source.Name()),
			zap.Int("ids", len(cat)),
			zap.Duration("took", time.Since(start)))

		c.mu.Lock()
		c.entry = &cacheEntry{catalog: cat, built: time.Now(), ttl: c.ttl}
		c.mu.Unlock()
		return cat, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(Catalog), nil
}

// ListKnownIDs implements Registry.
func (c *Cached) ListKnownIDs(ctx context.Context) (tables.IDSet, error) {
	cat, err := c.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return cat.IDs(), nil
}

// IntrinsicMaxLevel implements Registry.
func (c *Cached) IntrinsicMaxLevel(ctx context.Context, id tables.ID) (int, error) {
	cat, err := c.Catalog(ctx)
	if err != nil {
		return 0, err
	}
	return cat[id], nil
}

// Invalidate drops the cached catalogue so the next call reloads it.
func (c *Cached) Invalidate() {
	c.mu.Lock()
	c.entry = nil
	c.mu.Unlock()
}
