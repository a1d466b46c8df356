package dashboard

import (
	"sync"
	"time"
)

type entry struct {
	result *Result
	exp    time.Time
}

// DefaultMaxEntries bounds a cache created without an explicit limit
const DefaultMaxEntries = 512

// Cache memoizes query results by QueryParameters.Key. Results are never
// mutated after they are computed, so a cached *Result is safe to share.
// Expired entries are swept on every Set and the map never holds more than
// max entries.
type Cache struct {
	mu     sync.RWMutex
	m      map[string]entry
	ttl    time.Duration
	max    int
	now    func() time.Time
	hits   uint64
	misses uint64
}

// NewCache creates a cache whose entries expire after ttl and which holds at
// most maxEntries results. A non-positive maxEntries means DefaultMaxEntries.
func NewCache(ttl time.Duration, maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache{
		m:   make(map[string]entry),
		ttl: ttl,
		max: maxEntries,
		now: time.Now,
	}
}

// Get returns the cached result for key if it has not expired
func (c *Cache) Get(key string) (*Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.m[key]
	if !ok || c.now().After(e.exp) {
		if ok {
			delete(c.m, key)
		}
		c.misses++
		return nil, false
	}
	c.hits++
	return e.result, true
}

// Set stores a result under key, dropping expired entries first. When the
// cache is full the entry closest to expiry is evicted.
func (c *Cache) Set(key string, r *Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, e := range c.m {
		if now.After(e.exp) {
			delete(c.m, k)
		}
	}

	if _, ok := c.m[key]; !ok {
		for len(c.m) >= c.max {
			c.evictOldest()
		}
	}
	c.m[key] = entry{result: r, exp: now.Add(c.ttl)}
}

// evictOldest removes the entry that expires first. The caller holds mu.
func (c *Cache) evictOldest() {
	var (
		oldest string
		exp    time.Time
		found  bool
	)
	for k, e := range c.m {
		if !found || e.exp.Before(exp) {
			oldest, exp, found = k, e.exp, true
		}
	}
	delete(c.m, oldest)
}

// Stats returns the number of hits and misses so far
func (c *Cache) Stats() (hits, misses uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// Len returns the number of stored entries. Entries that expired since the
// last Set are still counted.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
