package wiki

import (
	"fmt"
	"strings"
	"sync"
)

// CacheVersion stamps every cache key. Bump it whenever the shape of the
// sanitization output changes so stale entries can never be served.
const CacheVersion = 12

// ContentCache maps normalized article titles to fully transformed HTML.
// Eviction is insertion-ordered: once the cache is full, the oldest
// inserted entry is dropped to make room. Re-putting an existing key
// replaces the value without refreshing its position; there is no TTL.
//
// Design decision: The original ran single-threaded, so its cache needed
// no locking. This one is shared by concurrent request handlers, so a
// mutex guards the map and the insertion order together.
type ContentCache struct {
	mu      sync.Mutex
	max     int
	version int
	entries map[string]string
	order   []string
}

// NewContentCache creates a cache holding at most capacity entries.
func NewContentCache(capacity int) *ContentCache {
	return &ContentCache{
		max:     capacity,
		version: CacheVersion,
		entries: make(map[string]string, capacity),
	}
}

// key normalizes a title into a versioned cache key.
func (c *ContentCache) key(title string) string {
	return fmt.Sprintf("%d:%s", c.version, strings.ToLower(strings.TrimSpace(title)))
}

// Get returns the cached content for a title, if present.
func (c *ContentCache) Get(title string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	content, ok := c.entries[c.key(title)]
	return content, ok
}

// Put stores content for a title, evicting the oldest entry when full.
func (c *ContentCache) Put(title, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := c.key(title)
	if _, exists := c.entries[key]; exists {
		c.entries[key] = content
		return
	}

	if len(c.entries) >= c.max && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = content
	c.order = append(c.order, key)
}

// Clear empties the cache unconditionally.
func (c *ContentCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]string, c.max)
	c.order = nil
}

// Len returns the number of cached entries.
func (c *ContentCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
