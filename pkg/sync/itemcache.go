package sync

import (
	"sync"
	"time"
)

// ItemDetail is the cached description pair for one item.
type ItemDetail struct {
	Description     string
	LongDescription string
}

type cacheEntry struct {
	detail    ItemDetail
	expiresAt time.Time
}

// ItemCache is a bounded TTL cache of item details, shared across sync runs.
// It is constructed once at process start and injected into each run.
type ItemCache struct {
	mu         sync.Mutex
	entries    map[string]cacheEntry
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
}

// NewItemCache creates a cache holding at most maxEntries items, each valid
// for ttl after insertion.
func NewItemCache(maxEntries int, ttl time.Duration) *ItemCache {
	return &ItemCache{
		entries:    make(map[string]cacheEntry),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Get returns the cached detail for itemID if present and not expired.
func (c *ItemCache) Get(itemID string) (ItemDetail, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[itemID]
	if !ok {
		return ItemDetail{}, false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, itemID)
		return ItemDetail{}, false
	}
	return entry.detail, true
}

// Put stores detail for itemID. When the cache is full, expired entries are
// swept first; if it is still full, an arbitrary entry is evicted.
func (c *ItemCache) Put(itemID string, detail ItemDetail) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[itemID]; !ok && len(c.entries) >= c.maxEntries {
		c.sweepLocked()
		if len(c.entries) >= c.maxEntries {
			for k := range c.entries {
				delete(c.entries, k)
				break
			}
		}
	}

	c.entries[itemID] = cacheEntry{
		detail:    detail,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Len returns the number of entries currently held, including expired ones
// not yet swept.
func (c *ItemCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *ItemCache) sweepLocked() {
	now := c.now()
	for k, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, k)
		}
	}
}
