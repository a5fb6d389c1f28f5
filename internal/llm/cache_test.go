package llm

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheKeyStable(t *testing.T) {
	a := CacheKey("same prompt")
	b := CacheKey("same prompt")
	c := CacheKey("other prompt")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestCachePutGet(t *testing.T) {
	c := NewResponseCache(10, time.Minute)
	c.Put("k1", "answer one")

	got, ok := c.Get("k1")
	assert.True(t, ok)
	assert.Equal(t, "answer one", got)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCacheEvictsOldestInserted(t *testing.T) {
	c := NewResponseCache(3, time.Minute)
	for i := 1; i <= 3; i++ {
		c.Put(fmt.Sprintf("k%d", i), fmt.Sprintf("v%d", i))
	}

	// Touching k1 must not protect it: eviction follows insertion order.
	_, ok := c.Get("k1")
	assert.True(t, ok)

	c.Put("k4", "v4")

	_, ok = c.Get("k1")
	assert.False(t, ok, "oldest-inserted entry must be evicted")
	for _, k := range []string{"k2", "k3", "k4"} {
		_, ok := c.Get(k)
		assert.True(t, ok, k)
	}
	assert.Equal(t, 3, c.Len())
}

func TestCacheRefreshKeepsPosition(t *testing.T) {
	c := NewResponseCache(2, time.Minute)
	c.Put("k1", "v1")
	c.Put("k2", "v2")
	c.Put("k1", "v1-updated")

	got, ok := c.Get("k1")
	assert.True(t, ok)
	assert.Equal(t, "v1-updated", got)

	// k1 kept its original slot, so it is still first out.
	c.Put("k3", "v3")
	_, ok = c.Get("k1")
	assert.False(t, ok)
	_, ok = c.Get("k2")
	assert.True(t, ok)
}

func TestCacheTTLExpiry(t *testing.T) {
	c := NewResponseCache(10, time.Minute)
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	c.Put("k1", "v1")

	c.now = func() time.Time { return base.Add(59 * time.Second) }
	_, ok := c.Get("k1")
	assert.True(t, ok)

	c.now = func() time.Time { return base.Add(time.Minute) }
	_, ok = c.Get("k1")
	assert.False(t, ok, "entry at TTL boundary is expired")
	assert.Equal(t, 0, c.Len())
}

func TestCacheDefaults(t *testing.T) {
	c := NewResponseCache(0, 0)
	assert.Equal(t, 100, c.capacity)
	assert.Equal(t, 5*time.Minute, c.ttl)
}
