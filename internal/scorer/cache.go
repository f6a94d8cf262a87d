package scorer

import (
	"sync"
	"time"

	"github.com/seoforge/seoforge/internal/types"
)

// cacheEntry records one resolved query for the lifetime of the session.
type cacheEntry struct {
	queryID string
	status  string
	created time.Time
	bundle  *types.QueryBundle
}

// SessionCache is a process-lifetime idempotency cache mapping normalized
// keyword to its resolved query. It is injected into the Manager rather than
// held as package state so tests and concurrent server runs get isolated
// caches.
//
// Invariant: at most one query is created per normalized keyword per session;
// the Manager must consult the cache before any create call.
type SessionCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewSessionCache creates an empty cache.
func NewSessionCache() *SessionCache {
	return &SessionCache{entries: make(map[string]cacheEntry)}
}

// get returns the cached bundle for a normalized keyword, if present.
func (c *SessionCache) get(key string) (*types.QueryBundle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return entry.bundle, true
}

// put stores a resolved query under a normalized keyword.
func (c *SessionCache) put(key string, bundle *types.QueryBundle, status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{
		queryID: bundle.QueryID,
		status:  status,
		created: time.Now(),
		bundle:  bundle,
	}
}

// remove drops a normalized keyword from the cache.
func (c *SessionCache) remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len reports the number of cached keywords.
func (c *SessionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
