// Package respcache memoizes presentation-layer responses keyed by handler
// and parameters, invalidated wholesale whenever the event window changes
// version. Eviction is FIFO, not LRU: within one version's lifetime most keys
// are unique per request context, so access-recency buys little.
package respcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"calbotd/pkg/types"
)

// defaultMaxSize bounds the cache when the caller does not.
const defaultMaxSize = 100

// Payload is an opaque JSON-serializable response mapping.
type Payload = map[string]any

// entry pairs a payload with the window version it was computed against.
// An entry is a valid hit only while its version equals the cache's current
// version; a mismatch is a miss even when the key matches.
type entry struct {
	payload Payload
	version uint64
}

// Cache is a small versioned response cache. It carries its own lock,
// independent of the window lock: inserts, evictions, and version bumps must
// be internally consistent but never contend with window reads.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	order   []string // insertion order, oldest first
	maxSize int
	version uint64

	hits          uint64
	misses        uint64
	evictions     uint64
	invalidations uint64
}

// New constructs a Cache bounded to maxSize entries.
func New(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = defaultMaxSize
	}
	return &Cache{
		entries: make(map[string]entry),
		maxSize: maxSize,
	}
}

// GenerateKey derives a deterministic key from handler name, current version,
// and a content hash of the parameter set. The same logical parameter set
// hashes identically regardless of field order; the hash deduplicates, it is
// not a security boundary.
func (c *Cache) GenerateKey(handler string, params map[string]any) string {
	c.mu.Lock()
	v := c.version
	c.mu.Unlock()
	return fmt.Sprintf("%s:v%d:%s", handler, v, hashParams(params))
}

// hashParams produces a short stable digest of params. encoding/json sorts
// map keys at every level, so field order never changes the digest.
func hashParams(params map[string]any) string {
	b, err := json.Marshal(params)
	if err != nil {
		// Unserializable params cannot be cached meaningfully; a constant
		// bucket still yields a safe miss-or-overwrite.
		b = []byte("unhashable")
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:8])
}

// Get returns the cached payload for key, or a miss. Stale entries (version
// behind the current one) are treated as absent but not actively purged;
// InvalidateAll is the only purge.
func (c *Cache) Get(key string) (Payload, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || e.version != c.version {
		c.misses++
		cacheMisses.Inc()
		return nil, false
	}
	c.hits++
	cacheHits.Inc()
	return e.payload, true
}

// Set inserts or overwrites the payload at the current version. When the map
// would exceed the bound, the single oldest-inserted entry is evicted.
func (c *Cache) Set(key string, payload Payload) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists {
		if len(c.entries) >= c.maxSize && len(c.order) > 0 {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
			c.evictions++
			cacheEvictions.Inc()
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = entry{payload: payload, version: c.version}
	cacheEntries.Set(float64(len(c.entries)))
}

// InvalidateAll advances the version and clears the backing map. Called once
// per successful window replacement; it is the only way stale entries leave
// memory.
func (c *Cache) InvalidateAll() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version++
	c.entries = make(map[string]entry)
	c.order = nil
	c.invalidations++
	cacheInvalidations.Inc()
	cacheEntries.Set(0)
	return c.version
}

// Version returns the current window version without modifying state.
func (c *Cache) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// Stats returns the diagnostic counters. All counters accumulate
// monotonically except CurrentSize.
func (c *Cache) Stats() types.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := types.CacheStats{
		Hits:          c.hits,
		Misses:        c.misses,
		Evictions:     c.evictions,
		Invalidations: c.invalidations,
		CurrentSize:   len(c.entries),
		MaxSize:       c.maxSize,
		WindowVersion: c.version,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}
