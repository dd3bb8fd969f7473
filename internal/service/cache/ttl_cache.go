package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	v       []byte
	exp     time.Time
	touched time.Time
}

// TTLCache is an in-process cache bounded by maxSize; the least recently used entry is evicted first.
type TTLCache struct {
	mu      sync.Mutex
	m       map[string]*entry
	maxSize int
	now     func() time.Time
}

func NewTTLCache(maxSize int) *TTLCache {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &TTLCache{m: make(map[string]*entry), maxSize: maxSize, now: time.Now}
}

func (c *TTLCache) GetBytes(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.m[key]
	if !ok {
		return nil, false, nil
	}
	now := c.now()
	if !e.exp.IsZero() && now.After(e.exp) {
		delete(c.m, key)
		return nil, false, nil
	}
	e.touched = now
	return e.v, true, nil
}

func (c *TTLCache) SetBytes(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var exp time.Time
	if ttl > 0 {
		exp = now.Add(ttl)
	}
	if _, exists := c.m[key]; !exists && len(c.m) >= c.maxSize {
		c.evictLRU()
	}
	c.m[key] = &entry{v: value, exp: exp, touched: now}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *TTLCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

func (c *TTLCache) Close() error { return nil }

func (c *TTLCache) evictLRU() {
	var oldestKey string
	var oldest time.Time
	for k, e := range c.m {
		if oldestKey == "" || e.touched.Before(oldest) {
			oldestKey, oldest = k, e.touched
		}
	}
	delete(c.m, oldestKey)
}
