// Package tiered layers an in-process cache over a shared remote one.
// Report lookups hit the local level first so repeated reads of a finished
// run never leave the process.
package tiered

import (
	"context"
	"time"

	"github.com/Strob0t/AdForge/internal/port/cache"
)

// Cache reads through two cache levels. A hit on the shared level is
// backfilled into the local level; writes and deletes go to both.
type Cache struct {
	local    cache.Cache
	shared   cache.Cache
	localTTL time.Duration
}

// New wires a local and a shared cache level. localTTL bounds how long a
// backfilled entry lives locally, independent of the shared entry's TTL.
func New(local, shared cache.Cache, localTTL time.Duration) *Cache {
	return &Cache{local: local, shared: shared, localTTL: localTTL}
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if data, ok, err := c.local.Get(ctx, key); err != nil || ok {
		return data, ok, err
	}
	data, ok, err := c.shared.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	// Backfill failures are not worth surfacing; the shared hit stands.
	_ = c.local.Set(ctx, key, data, c.localTTL)
	return data, true, nil
}

// Set writes through both levels, shared first so a local hit never
// outlives a failed shared write.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.shared.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	return c.local.Set(ctx, key, value, ttl)
}

// Delete removes the key from both levels.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.shared.Delete(ctx, key); err != nil {
		return err
	}
	return c.local.Delete(ctx, key)
}
