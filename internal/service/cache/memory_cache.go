package cache

import (
	"sync"
	"time"
)

type memEntry struct {
	b   []byte
	exp time.Time
}

// MemoryCache is an in-process BytesCache used when Redis is disabled.
// Expired entries are dropped lazily on read.
type MemoryCache struct {
	mu sync.RWMutex
	m  map[string]memEntry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{m: make(map[string]memEntry)}
}

func (c *MemoryCache) GetBytes(key string) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.exp.IsZero() && time.Now().After(e.exp) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return nil, false, nil
	}
	return e.b, true, nil
}

func (c *MemoryCache) SetBytes(key string, value []byte, ttl time.Duration) error {
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.m[key] = memEntry{b: value, exp: exp}
	c.mu.Unlock()
	return nil
}
