// Package caches holds the in-process file cache backing the serving path.
package caches

import (
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"
)

// Entry is a cached file's metadata plus, for small files, its payload.
// Data is nil when the source object exceeded the payload threshold; in that
// case only the metadata is served from memory and bytes are streamed.
type Entry struct {
	ContentType   string
	ContentLength int64
	LastModified  time.Time
	ETag          string
	Data          []byte
	CachedAt      time.Time
}

// MemoryCache is a bounded map of cache entries keyed by storage key. TTL
// expiry is handled lazily on reads, with a small random chance of a full
// sweep per write; when the item cap is reached the oldest entry by insertion
// time is evicted. Concurrent writers to one key race last-write-wins, which
// is fine because entries derive from immutable stored objects.
type MemoryCache struct {
	mu       sync.Mutex
	items    map[string]*Entry
	maxItems int
	ttl      time.Duration

	// Statistics
	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64

	// Probability per Set of sweeping all expired entries.
	sweepChance float64
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Items     int     `json:"items"`
	SizeBytes int64   `json:"sizeBytes"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	HitRate   float64 `json:"hitRate"`
}

// NewMemoryCache creates a cache holding at most maxItems entries, each
// living for ttl.
func NewMemoryCache(maxItems int, ttl time.Duration) *MemoryCache {
	if maxItems < 1 {
		maxItems = 1
	}
	if ttl <= 0 {
		ttl = 4 * time.Hour
	}
	return &MemoryCache{
		items:       make(map[string]*Entry, maxItems),
		maxItems:    maxItems,
		ttl:         ttl,
		sweepChance: 0.01,
	}
}

// Get returns the entry for key, or nil on miss or expiry. Expired entries
// are deleted on the way out.
func (mc *MemoryCache) Get(key string) *Entry {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	e, ok := mc.items[key]
	if !ok {
		mc.misses.Add(1)
		return nil
	}
	if time.Since(e.CachedAt) > mc.ttl {
		delete(mc.items, key)
		mc.misses.Add(1)
		return nil
	}
	mc.hits.Add(1)
	return e
}

// Has reports whether a live entry exists without touching hit counters.
func (mc *MemoryCache) Has(key string) bool {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	e, ok := mc.items[key]
	return ok && time.Since(e.CachedAt) <= mc.ttl
}

// Set stores an entry, evicting the oldest entry if the cap is reached and
// occasionally sweeping out everything expired.
func (mc *MemoryCache) Set(key string, e *Entry) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if e.CachedAt.IsZero() {
		e.CachedAt = time.Now()
	}

	if rand.Float64() < mc.sweepChance {
		mc.sweepLocked()
	}

	if _, exists := mc.items[key]; !exists && len(mc.items) >= mc.maxItems {
		mc.evictOldestLocked()
	}
	mc.items[key] = e
}

// Evict removes a single key.
func (mc *MemoryCache) Evict(key string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	delete(mc.items, key)
}

// Clear drops all entries and resets counters.
func (mc *MemoryCache) Clear() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.items = make(map[string]*Entry, mc.maxItems)
	mc.hits.Store(0)
	mc.misses.Store(0)
	mc.evictions.Store(0)
	log.Printf("Memory cache: cleared all entries")
}

// Len returns the current entry count, including not-yet-swept expired ones.
func (mc *MemoryCache) Len() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return len(mc.items)
}

// GetStats reports the cache counters.
func (mc *MemoryCache) GetStats() Stats {
	mc.mu.Lock()
	items := len(mc.items)
	var size int64
	for _, e := range mc.items {
		size += int64(len(e.Data))
	}
	mc.mu.Unlock()

	hits := mc.hits.Load()
	misses := mc.misses.Load()
	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	return Stats{
		Items:     items,
		SizeBytes: size,
		Hits:      hits,
		Misses:    misses,
		Evictions: mc.evictions.Load(),
		HitRate:   hitRate,
	}
}

// sweepLocked purges every expired entry. Caller holds mc.mu.
func (mc *MemoryCache) sweepLocked() {
	now := time.Now()
	removed := 0
	for k, e := range mc.items {
		if now.Sub(e.CachedAt) > mc.ttl {
			delete(mc.items, k)
			removed++
		}
	}
	if removed > 0 {
		log.Printf("Memory cache: swept %d expired entries", removed)
	}
}

// evictOldestLocked removes the entry with the oldest CachedAt. Caller holds
// mc.mu.
func (mc *MemoryCache) evictOldestLocked() {
	var oldestKey string
	var oldestTime time.Time
	first := true
	for k, e := range mc.items {
		if first || e.CachedAt.Before(oldestTime) {
			oldestKey = k
			oldestTime = e.CachedAt
			first = false
		}
	}
	if !first {
		delete(mc.items, oldestKey)
		mc.evictions.Add(1)
	}
}
