// Package cache provides the TTL+LRU store used on both sides of the
// network boundary: one instance sits in front of the reconciliation
// engine, another inside the dashboard client. Instances are independent;
// nothing is shared at package level.
package cache

import (
	"strings"
	"sync"
	"time"
)

const (
	DefaultTTL     = 30 * time.Minute
	DefaultMaxSize = 1000
)

type entry struct {
	value      interface{}
	insertedAt time.Time
}

// Stats describes the live contents of a cache.
type Stats struct {
	Total  int            `json:"total"`
	ByKind map[string]int `json:"by_kind"`
	Keys   []string       `json:"keys"`
}

// Cache is a TTL-bounded, LRU-evicted key/value store. Expiry is driven
// by insertion time; eviction order by a separate access-time map that
// every successful Get refreshes. Concurrent Set on the same key is
// last-write-wins.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]entry
	accessed map[string]time.Time
	ttl      time.Duration
	maxSize  int
	now      func() time.Time
}

func New(ttl time.Duration, maxSize int) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Cache{
		entries:  make(map[string]entry),
		accessed: make(map[string]time.Time),
		ttl:      ttl,
		maxSize:  maxSize,
		now:      time.Now,
	}
}

// Get returns the cached value, or nil and false on a miss. An entry past
// its TTL is removed and reported as a miss; a hit refreshes the entry's
// access time for LRU purposes.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.insertedAt) >= c.ttl {
		delete(c.entries, key)
		delete(c.accessed, key)
		return nil, false
	}

	c.accessed[key] = c.now()
	return e.value, true
}

// Set stores a value, evicting the least-recently-accessed entry first
// when the cache is full. The scan is O(n); fine at this cache's scale.
func (c *Cache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldestLocked()
	}

	now := c.now()
	c.entries[key] = entry{value: value, insertedAt: now}
	c.accessed[key] = now
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	delete(c.accessed, key)
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
	c.accessed = make(map[string]time.Time)
}

// Stats reports the live entries grouped by key kind (the prefix before
// the first ':'). Expired-but-unvisited entries are excluded.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{ByKind: make(map[string]int), Keys: []string{}}
	now := c.now()
	for key, e := range c.entries {
		if now.Sub(e.insertedAt) >= c.ttl {
			continue
		}
		stats.Total++
		stats.Keys = append(stats.Keys, key)
		stats.ByKind[kindOf(key)]++
	}
	return stats
}

func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	for key, at := range c.accessed {
		if oldestKey == "" || at.Before(oldestAt) {
			oldestKey = key
			oldestAt = at
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
		delete(c.accessed, oldestKey)
	}
}

func kindOf(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "other"
}

// setClock overrides the clock in tests.
func (c *Cache) setClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}
