// Package viewcache keeps the per-event set of client addresses seen by this process.
package viewcache

import "sync"

// Cache is a process-lifetime, concurrency-safe domain.ViewFallback.
type Cache struct {
	mu   sync.Mutex
	seen map[int64]map[string]struct{}
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{seen: make(map[int64]map[string]struct{})}
}

// Add records addr for eventID and returns the number of distinct addresses seen for it.
func (c *Cache) Add(eventID int64, addr string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	addrs, ok := c.seen[eventID]
	if !ok {
		addrs = make(map[string]struct{})
		c.seen[eventID] = addrs
	}
	addrs[addr] = struct{}{}
	return len(addrs)
}

// Count returns the number of distinct addresses seen for eventID.
func (c *Cache) Count(eventID int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen[eventID])
}
