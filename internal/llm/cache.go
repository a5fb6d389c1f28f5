package llm

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// ResponseCache is a bounded FIFO cache of generated answers keyed by a
// prompt fingerprint. Entries expire after a TTL; insertion beyond capacity
// evicts the oldest-inserted entry regardless of access recency.
type ResponseCache struct {
	mu       sync.Mutex
	entries  map[string]*list.Element
	order    *list.List
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

type cacheEntry struct {
	key      string
	response string
	storedAt time.Time
}

// NewResponseCache creates a cache with the given capacity and TTL.
// Non-positive values fall back to 100 entries and 5 minutes.
func NewResponseCache(capacity int, ttl time.Duration) *ResponseCache {
	if capacity <= 0 {
		capacity = 100
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ResponseCache{
		entries:  make(map[string]*list.Element),
		order:    list.New(),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// CacheKey computes the stable fingerprint of a prompt.
func CacheKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached response for a key if present and unexpired.
// Expired entries are removed on access.
func (c *ResponseCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return "", false
	}
	entry := el.Value.(*cacheEntry)
	if c.now().Sub(entry.storedAt) >= c.ttl {
		c.order.Remove(el)
		delete(c.entries, key)
		return "", false
	}
	return entry.response, true
}

// Put stores a response. A repeated key refreshes the entry in place without
// changing its insertion position.
func (c *ResponseCache) Put(key, response string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		entry := el.Value.(*cacheEntry)
		entry.response = response
		entry.storedAt = c.now()
		return
	}

	el := c.order.PushBack(&cacheEntry{key: key, response: response, storedAt: c.now()})
	c.entries[key] = el

	if c.order.Len() > c.capacity {
		oldest := c.order.Front()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

// Len reports the number of entries currently held, expired or not.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
