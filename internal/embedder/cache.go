package embedder

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is used when NewCache is given a non-positive size
const DefaultCacheSize = 10000

// Cache holds recently generated query embeddings keyed by content hash.
// Entries are copied on the way in and out. Lookups are counted, and each
// one is reported to the lookup observer when one is set.
type Cache struct {
	entries  *lru.Cache[string, *Embedding]
	capacity int
	hits     atomic.Uint64
	misses   atomic.Uint64
	onLookup func(hit bool)
}

// CacheStats is a point-in-time view of cache usage
type CacheStats struct {
	Hits     uint64
	Misses   uint64
	Size     int
	Capacity int
}

// HitRate is hits over lookups, or 0 before the first lookup
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// CacheOption configures a Cache
type CacheOption func(*Cache)

// WithLookupObserver calls fn after every Get with whether it hit.
// fn must be safe for concurrent use.
func WithLookupObserver(fn func(hit bool)) CacheOption {
	return func(c *Cache) {
		c.onLookup = fn
	}
}

// NewCache creates a cache holding at most maxLen embeddings
func NewCache(maxLen int, opts ...CacheOption) *Cache {
	if maxLen <= 0 {
		maxLen = DefaultCacheSize
	}
	entries, err := lru.New[string, *Embedding](maxLen)
	if err != nil {
		maxLen = DefaultCacheSize
		entries, _ = lru.New[string, *Embedding](maxLen)
	}

	c := &Cache{entries: entries, capacity: maxLen}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a copy of the embedding stored under hash
func (c *Cache) Get(hash string) (*Embedding, bool) {
	emb, ok := c.entries.Get(hash)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	if c.onLookup != nil {
		c.onLookup(ok)
	}
	if !ok {
		return nil, false
	}
	return cloneEmbedding(emb), true
}

// Set stores a copy of emb, evicting the least recently used entry when full
func (c *Cache) Set(hash string, emb *Embedding) {
	if emb == nil {
		return
	}
	c.entries.Add(hash, cloneEmbedding(emb))
}

// Size returns the number of cached embeddings
func (c *Cache) Size() int {
	return c.entries.Len()
}

// Stats reports lookup counters and occupancy
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Size:     c.entries.Len(),
		Capacity: c.capacity,
	}
}

// Clear drops every entry. Lookup counters are kept.
func (c *Cache) Clear() {
	c.entries.Purge()
}

func cloneEmbedding(emb *Embedding) *Embedding {
	vector := make([]float32, len(emb.Vector))
	copy(vector, emb.Vector)
	return &Embedding{
		Vector:    vector,
		Dimension: emb.Dimension,
		Model:     emb.Model,
		Hash:      emb.Hash,
	}
}
