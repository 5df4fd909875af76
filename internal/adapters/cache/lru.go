package cache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"chyrp/internal/domain"
)

type entry struct {
	value   []byte
	expires time.Time
}

// LRU is an in-process domain.Cache holding at most size entries. Expired entries are
// dropped when read.
type LRU struct {
	entries *lru.Cache[string, entry]
	now     func() time.Time
}

var _ domain.Cache = (*LRU)(nil)

func NewLRU(size int) (*LRU, error) {
	entries, err := lru.New[string, entry](size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &LRU{entries: entries, now: time.Now}, nil
}

func (c *LRU) Get(_ context.Context, key string) ([]byte, error) {
	e, ok := c.entries.Get(key)
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		c.entries.Remove(key)
		return nil, domain.ErrCacheMiss
	}
	return e.value, nil
}

// Set stores value; a ttl <= 0 never expires.
func (c *LRU) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: value}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	c.entries.Add(key, e)
	return nil
}

func (c *LRU) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		c.entries.Remove(k)
	}
	return nil
}
