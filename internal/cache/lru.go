package cache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type item struct {
	data      []byte
	expiresAt time.Time
}

// LRU is an in-process cache bounded by entry count, with per-entry expiry.
type LRU struct {
	entries *lru.Cache[string, item]
	now     func() time.Time
}

var _ Cache = (*LRU)(nil)

func NewLRU(size int) (*LRU, error) {
	entries, err := lru.New[string, item](size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &LRU{entries: entries, now: time.Now}, nil
}

func (c *LRU) Set(_ context.Context, key string, data []byte, ttl time.Duration) {
	c.entries.Add(key, item{
		data:      data,
		expiresAt: c.now().Add(ttl),
	})
}

func (c *LRU) Get(_ context.Context, key string) ([]byte, bool) {
	val, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	if c.now().After(val.expiresAt) {
		c.entries.Remove(key)
		return nil, false
	}
	return val.data, true
}

func (c *LRU) Clear(_ context.Context) {
	c.entries.Purge()
}

func (c *LRU) Len() int {
	return c.entries.Len()
}
