package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"marketplace.app/metrics"
)

// Accessor orchestrates read-through get-or-compute against the Store.
// Concurrent misses on the same key each recompute and write independently;
// the compute functions are pure reads, so the duplicate writes converge.
type Accessor struct {
	store     Store
	mu        sync.Mutex
	viewStats map[string]*metrics.CacheMetrics
}

func NewAccessor(store Store) *Accessor {
	return &Accessor{
		store:     store,
		viewStats: make(map[string]*metrics.CacheMetrics),
	}
}

func (a *Accessor) metricsFor(view string) *metrics.CacheMetrics {
	a.mu.Lock()
	defer a.mu.Unlock()

	m, ok := a.viewStats[view]
	if !ok {
		m = metrics.NewCacheMetrics(view)
		a.viewStats[view] = m
	}
	return m
}

// GetOrCompute returns the cached value under key, or computes it from the
// primary store, caches it with ttl, and returns it. If the cache store is
// unreachable the read degrades to direct computation and skips the write;
// a caller's read never fails because the cache is down.
func GetOrCompute[T any](ctx context.Context, a *Accessor, view, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, error) {
	var zero T
	stats := a.metricsFor(view)

	start := time.Now()
	data, found, err := a.store.Get(ctx, key)
	stats.RecordLatency("get", time.Since(start).Seconds())

	if err != nil {
		slog.Warn("cache unreachable, computing directly", "key", key, "error", err)
		stats.RecordDegraded()
		return compute(ctx)
	}

	if found {
		var value T
		if err := json.Unmarshal(data, &value); err == nil {
			stats.RecordHit()
			slog.Debug("cache hit", "key", key)
			return value, nil
		}
		// Undecodable entry: treat as a miss and overwrite below.
		slog.Warn("cache entry corrupt, recomputing", "key", key)
	}

	stats.RecordMiss()
	slog.Debug("cache miss", "key", key)

	value, err := compute(ctx)
	if err != nil {
		return zero, err
	}

	data, err = json.Marshal(value)
	if err != nil {
		slog.Error("cache marshal error", "key", key, "error", err)
		return value, nil
	}

	if err := a.store.SetWithTTL(ctx, key, data, ttl); err != nil {
		slog.Warn("cache store write failed", "key", key, "error", err)
	}

	return value, nil
}
