package core

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrCacheMiss         = errors.New("key not found in cache")
	ErrInvalidCacheValue = errors.New("invalid value for cache")
)

// Cache is a small read-through cache. Values must be *string or implement
// encoding.BinaryMarshaler/BinaryUnmarshaler.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, key string) error
	Close() error
}
