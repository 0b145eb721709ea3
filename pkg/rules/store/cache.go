package store

import (
	"sync"

	"mercator-hq/themis/pkg/rules"
)

// fifoCache is a bounded cache evicting in first-in-first-out insertion
// order. An explicit key queue alongside the map keeps eviction O(1) and
// deterministic, independent of map iteration order.
//
// All methods are safe for concurrent use; the store's request paths and
// the TTL sweeper mutate the cache from different goroutines.
type fifoCache struct {
	mu         sync.Mutex
	maxEntries int
	entries    map[string]*rules.RuleSet
	order      []string
}

// newFIFOCache creates a cache bounded to maxEntries.
func newFIFOCache(maxEntries int) *fifoCache {
	return &fifoCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*rules.RuleSet, maxEntries),
		order:      make([]string, 0, maxEntries),
	}
}

// Get returns the cached rule set for the key, if present.
func (c *fifoCache) Get(key string) (*rules.RuleSet, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	set, ok := c.entries[key]
	return set, ok
}

// Put inserts or replaces the entry for key. When a new key would exceed
// the bound, the single oldest-inserted entry is evicted first. Replacing
// an existing key keeps its original queue position. Returns the evicted
// key, if any.
func (c *fifoCache) Put(key string, set *rules.RuleSet) (evicted string, didEvict bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = set
		return "", false
	}

	if len(c.order) >= c.maxEntries {
		evicted = c.order[0]
		c.order = c.order[1:]
		delete(c.entries, evicted)
		didEvict = true
	}

	c.entries[key] = set
	c.order = append(c.order, key)
	return evicted, didEvict
}

// Delete removes the entry for key, preserving queue consistency.
func (c *fifoCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		return
	}

	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of cached entries.
func (c *fifoCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Keys returns the cached keys in insertion order.
func (c *fifoCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, len(c.order))
	copy(keys, c.order)
	return keys
}
