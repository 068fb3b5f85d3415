// Package memcache implements core.Cache in process memory (tests, single-node dev).
package memcache

import (
	"context"
	"encoding"
	"sync"
	"time"

	"github.com/trezcool/hisani/core"
)

const defaultTTL = time.Hour

type entry struct {
	data      []byte
	expiresAt time.Time
}

type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
}

var _ core.Cache = (*Cache)(nil) // interface compliance check

func New() *Cache {
	return &Cache{entries: make(map[string]entry)}
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl == 0 {
		ttl = defaultTTL
	}

	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case encoding.BinaryMarshaler:
		var err error
		if data, err = v.MarshalBinary(); err != nil {
			return err
		}
	default:
		return core.ErrInvalidCacheValue
	}

	c.mu.Lock()
	c.entries[key] = entry{data: data, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

func (c *Cache) Get(ctx context.Context, key string, value interface{}) error {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(e.expiresAt) {
		return core.ErrCacheMiss
	}

	switch v := value.(type) {
	case *string:
		*v = string(e.data)
	case encoding.BinaryUnmarshaler:
		return v.UnmarshalBinary(e.data)
	default:
		return core.ErrInvalidCacheValue
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

func (c *Cache) Close() error {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
	return nil
}
