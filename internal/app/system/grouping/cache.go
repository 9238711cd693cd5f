// internal/app/system/grouping/cache.go

// Package grouping holds the last generated partition per browser
// session so the export endpoints can reach it. Keeping this explicit
// and mutex-guarded (instead of a package-level "current groups"
// variable) is what makes concurrent generate requests safe: two
// sessions generating at once never see each other's groups.
package grouping

import (
	"sync"
	"time"

	"github.com/khebert/koinonia/internal/divider"
)

// maxAge bounds how long an unused partition is kept before Sweep
// discards it.
const maxAge = 12 * time.Hour

// Result is one generated partition with the context it was built in.
type Result struct {
	Partition   divider.Partition
	Date        string // meeting date the attendance was read for
	GeneratedAt time.Time
}

// Cache maps session IDs to their most recent Result.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Result
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]Result)}
}

// Put stores the session's latest partition, replacing any previous one.
// The partition is cloned so later caller-side mutation cannot leak in.
func (c *Cache) Put(sessionID string, r Result) {
	if sessionID == "" {
		return
	}
	r.Partition = r.Partition.Clone()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[sessionID] = r
}

// Get returns a copy of the session's last partition, if any.
func (c *Cache) Get(sessionID string) (Result, bool) {
	c.mu.RLock()
	r, ok := c.entries[sessionID]
	c.mu.RUnlock()
	if !ok {
		return Result{}, false
	}
	r.Partition = r.Partition.Clone()
	return r, true
}

// Clear drops the session's partition.
func (c *Cache) Clear(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, sessionID)
}

// Sweep evicts entries older than maxAge and returns how many were
// dropped. Called periodically from a background task.
func (c *Cache) Sweep(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	dropped := 0
	for id, r := range c.entries {
		if now.Sub(r.GeneratedAt) > maxAge {
			delete(c.entries, id)
			dropped++
		}
	}
	return dropped
}

// Len reports how many sessions currently hold a partition.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
