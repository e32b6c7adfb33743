package service

import (
	"context"
	"sync"

	"github.com/clauselens/clauselens/internal/domain"
	"github.com/clauselens/clauselens/internal/llm"
	"github.com/clauselens/clauselens/internal/metrics"
	"golang.org/x/sync/singleflight"
)

// DefaultIndexCacheCapacity bounds how many semantic indexes stay resident.
const DefaultIndexCacheCapacity = 10

// IndexCache is a bounded, fingerprint-keyed cache of semantic indexes.
// Eviction is insertion-order (oldest inserted first), not least-recently-
// used; recomputing with identical inputs reuses the cached entry instead
// of re-embedding. Concurrent builds of the same missing fingerprint are
// collapsed into a single flight.
type IndexCache struct {
	mu       sync.Mutex
	entries  map[string]*VectorIndex
	order    []string
	capacity int
	group    singleflight.Group
}

// NewIndexCache creates an IndexCache holding at most capacity entries.
// A non-positive capacity falls back to the default of 10.
func NewIndexCache(capacity int) *IndexCache {
	if capacity <= 0 {
		capacity = DefaultIndexCacheCapacity
	}
	return &IndexCache{
		entries:  make(map[string]*VectorIndex),
		capacity: capacity,
	}
}

// Get returns the cached index for fingerprint, if present.
func (c *IndexCache) Get(fingerprint string) (*VectorIndex, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ix, ok := c.entries[fingerprint]
	return ix, ok
}

// GetOrBuild returns the cached index for fingerprint, building and
// inserting one when absent. A failed build caches nothing.
func (c *IndexCache) GetOrBuild(ctx context.Context, fingerprint string, chunks []domain.Chunk, embedder llm.Embedder) (*VectorIndex, error) {
	if ix, ok := c.Get(fingerprint); ok {
		metrics.IndexCacheHits.Inc()
		return ix, nil
	}
	metrics.IndexCacheMisses.Inc()

	v, err, _ := c.group.Do(fingerprint, func() (interface{}, error) {
		// A concurrent flight may have inserted the entry already.
		if ix, ok := c.Get(fingerprint); ok {
			return ix, nil
		}

		ix, err := BuildIndex(ctx, chunks, embedder)
		if err != nil {
			return nil, err
		}
		c.insert(fingerprint, ix)
		return ix, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*VectorIndex), nil
}

// Len returns the number of live entries.
func (c *IndexCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *IndexCache) insert(fingerprint string, ix *VectorIndex) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[fingerprint]; !ok {
		c.order = append(c.order, fingerprint)
	}
	c.entries[fingerprint] = ix

	for len(c.entries) > c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}
