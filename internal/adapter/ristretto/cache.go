// Package ristretto adapts dgraph-io/ristretto to the cache port. It is the
// in-process tier for run reports; admission is lossy, so callers treat a
// miss after Set as a normal miss.
package ristretto

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

type Cache struct {
	inner *ristretto.Cache[string, []byte]
}

// New builds a cache bounded to maxCostBytes of stored value bytes. Counter
// sizing follows the ristretto guidance of roughly ten counters per
// expected entry, assuming reports around 100 bytes and up.
func New(maxCostBytes int64) (*Cache, error) {
	inner, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: maxCostBytes / 100 * 10,
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{inner: inner}, nil
}

func (c *Cache) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, ok := c.inner.Get(key)
	if !ok {
		return nil, false, nil
	}
	return data, true, nil
}

func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.inner.SetWithTTL(key, value, int64(len(value)), ttl)
	return nil
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.inner.Del(key)
	return nil
}

// Wait blocks until buffered writes have been applied, so tests can read
// their own writes.
func (c *Cache) Wait() {
	c.inner.Wait()
}
