package catalog

import (
	"sync"
	"time"
)

type cacheEntry struct {
	song       *Song
	resolvedAt time.Time
}

// Cache is a read-through song cache shared by all guild sessions. Entries
// older than the TTL are evicted on read: a stale audio URL is worse than a
// second catalog call, so freshness wins over memory.
type Cache struct {
	mu      sync.RWMutex
	entries map[int]cacheEntry
	ttl     time.Duration

	now func() time.Time // stubbed in tests
}

// NewCache creates a cache with the given freshness window.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[int]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached song, or nil on miss. A stale entry counts as a
// miss and is removed so the next Put replaces it with a fresh resolution.
func (c *Cache) Get(id int) *Song {
	c.mu.RLock()
	entry, ok := c.entries[id]
	c.mu.RUnlock()

	if !ok {
		return nil
	}
	if c.now().Sub(entry.resolvedAt) > c.ttl {
		c.mu.Lock()
		// Re-check under the write lock; another goroutine may have
		// refreshed the entry in the window.
		if cur, ok := c.entries[id]; ok && c.now().Sub(cur.resolvedAt) > c.ttl {
			delete(c.entries, id)
		}
		c.mu.Unlock()
		return nil
	}
	return entry.song
}

// Put stores a successfully resolved song. Callers must never cache partial
// or error results.
func (c *Cache) Put(song *Song) {
	if song == nil {
		return
	}
	c.mu.Lock()
	c.entries[song.ID] = cacheEntry{song: song, resolvedAt: c.now()}
	c.mu.Unlock()
}

// Len reports the number of live entries, stale ones included until read.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
