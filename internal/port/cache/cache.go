// Package cache defines the byte cache port backing report lookups. The
// in-process ristretto tier, the NATS KV tier, and the tiered composition
// all satisfy it.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque bytes under string keys. Get distinguishes a miss
// (false, nil error) from a backend failure; implementations may evict at
// any time, so Set is best effort.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
