package embedding

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// embeddingCache is a fixed-capacity ring of embeddings keyed by text hash.
// EmbedBatch consults it before taking the inference lock, so repeated
// probes never touch the server; when the ring wraps, the oldest slot is
// overwritten in place. Hit/miss counters back Client.CacheStats, which the
// batch path logs so hosts can judge whether their probe traffic warrants a
// bigger ring.
type embeddingCache struct {
	mu     sync.Mutex
	slots  []cacheSlot
	index  map[string]int // key → slot position
	cursor int            // next slot to overwrite
	hits   uint64
	misses uint64
}

type cacheSlot struct {
	key string
	vec []float64
}

func newEmbeddingCache(capacity int) *embeddingCache {
	return &embeddingCache{
		slots: make([]cacheSlot, capacity),
		index: make(map[string]int, capacity),
	}
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func (c *embeddingCache) get(text string) ([]float64, bool) {
	key := cacheKey(text)
	c.mu.Lock()
	defer c.mu.Unlock()

	if pos, ok := c.index[key]; ok {
		c.hits++
		return c.slots[pos].vec, true
	}
	c.misses++
	return nil, false
}

func (c *embeddingCache) set(text string, vec []float64) {
	key := cacheKey(text)
	c.mu.Lock()
	defer c.mu.Unlock()

	if pos, ok := c.index[key]; ok {
		c.slots[pos].vec = vec
		return
	}

	// Overwrite the oldest slot and advance the ring
	if old := c.slots[c.cursor]; old.key != "" {
		delete(c.index, old.key)
	}
	c.slots[c.cursor] = cacheSlot{key: key, vec: vec}
	c.index[key] = c.cursor
	c.cursor = (c.cursor + 1) % len(c.slots)
}

func (c *embeddingCache) stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
