package draft

import (
	"sync"
	"sync/atomic"
)

// memoCache is an append-only memoization map guarded by a RWMutex.
// Values for a key are pure, so concurrent first writes store the same result.
type memoCache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]V
	hits    atomic.Int64
	misses  atomic.Int64
}

// CacheStats tracks cache performance metrics.
type CacheStats struct {
	Hits   int64
	Misses int64
	Size   int
}

// HitRate returns the hit rate as a percentage.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0.0
	}
	return float64(s.Hits) / float64(total) * 100.0
}

func newMemoCache[K comparable, V any]() *memoCache[K, V] {
	return &memoCache[K, V]{entries: make(map[K]V)}
}

// Get returns the cached value for key.
func (c *memoCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	v, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Set stores v under key unless a value is already present.
func (c *memoCache[K, V]) Set(key K, v V) V {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[key]; ok {
		return existing
	}
	c.entries[key] = v
	return v
}

// GetOrCompute returns the cached value or computes and stores it.
// compute runs without the lock held.
func (c *memoCache[K, V]) GetOrCompute(key K, compute func() V) V {
	if v, ok := c.Get(key); ok {
		return v
	}
	return c.Set(key, compute())
}

// Clear removes all entries.
func (c *memoCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]V)
}

// Stats returns current cache statistics.
func (c *memoCache[K, V]) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Size:   len(c.entries),
	}
}
