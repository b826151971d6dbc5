// Package cache keeps recently scraped records for the single-page viewer.
package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/use-agent/gleaner/models"
)

type entry struct {
	record    models.ScrapedRecord
	createdAt time.Time
}

// Cache is an in-memory record cache keyed by URL. It is safe for
// concurrent use. When full, the oldest entry is evicted.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
	stop       chan struct{}
	stopOnce   sync.Once
}

// New creates a Cache holding at most maxEntries records. Entries older
// than ttl are swept every ttl/12.
// A ttl <= 0 disables sweeping.
func New(maxEntries int, ttl time.Duration) *Cache {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
		stop:       make(chan struct{}),
	}
	if ttl > 0 {
		go c.sweepLoop(ttl / 12)
	}
	return c
}

// Key normalizes a URL into a cache key.
func Key(rawURL string) string {
	return strings.TrimSpace(rawURL)
}

// Get returns a copy of the record for key if it is younger than maxAge.
// A maxAge <= 0 never hits.
func (c *Cache) Get(key string, maxAge time.Duration) (models.ScrapedRecord, bool) {
	if maxAge <= 0 {
		return models.ScrapedRecord{}, false
	}

	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok || c.now().Sub(e.createdAt) > maxAge {
		return models.ScrapedRecord{}, false
	}
	return e.record, true
}

// Set stores rec under key. Error records are not cached.
func (c *Cache) Set(key string, rec models.ScrapedRecord) {
	if rec.ContentType == models.ContentTypeError {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.store[key]; !exists && len(c.store) >= c.maxEntries {
		c.evictOldestLocked()
	}
	c.store[key] = &entry{record: rec, createdAt: c.now()}
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Close stops the background sweeper.
func (c *Cache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Cache) evictOldestLocked() {
	var (
		oldestKey string
		oldest    time.Time
	)
	for k, e := range c.store {
		if oldestKey == "" || e.createdAt.Before(oldest) {
			oldestKey, oldest = k, e.createdAt
		}
	}
	delete(c.store, oldestKey)
}

func (c *Cache) sweepLoop(every time.Duration) {
	if every <= 0 {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache) sweep() {
	cutoff := c.now().Add(-c.ttl)
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.store {
		if e.createdAt.Before(cutoff) {
			delete(c.store, k)
		}
	}
}
