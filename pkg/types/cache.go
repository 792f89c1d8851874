package types

import (
	"context"
	"time"
)

// Cache is the cache/KV tier contract used by the state management
// backend. TTL expiry is native to the backing store.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	SetEx(ctx context.Context, key, value string, expiresAt time.Duration) error
	Expire(ctx context.Context, key string, expiration time.Duration) error
	Del(ctx context.Context, key string) error
}
