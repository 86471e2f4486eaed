package geocode

import (
	"context"

	"github.com/dgraph-io/ristretto/v2"
)

// cacheMaxEntries bounds the cache; pincodes repeat heavily in queries but the
// working set is small. Replaces the unbounded memoization this service
// previously relied on.
const cacheMaxEntries = 128

// CachedResolver memoizes another resolver's lookups in a bounded,
// concurrency-safe cache. Successful and not-found lookups are cached;
// transient errors are not, so a resolver hiccup does not poison a pincode.
type CachedResolver struct {
	inner Resolver
	cache *ristretto.Cache[string, *Address]
}

var _ Resolver = (*CachedResolver)(nil)

// NewCachedResolver wraps inner with the bounded cache.
func NewCachedResolver(inner Resolver) (*CachedResolver, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, *Address]{
		NumCounters: cacheMaxEntries * 10,
		MaxCost:     cacheMaxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &CachedResolver{inner: inner, cache: cache}, nil
}

// Resolve returns the cached address when present; a cached nil means a
// remembered not-found.
func (c *CachedResolver) Resolve(ctx context.Context, pincode string) (*Address, error) {
	if addr, ok := c.cache.Get(pincode); ok {
		if addr == nil {
			return nil, ErrNotFound
		}
		return addr, nil
	}

	addr, err := c.inner.Resolve(ctx, pincode)
	switch err {
	case nil:
		c.cache.Set(pincode, addr, 1)
	case ErrNotFound:
		c.cache.Set(pincode, nil, 1)
	}
	return addr, err
}

// Wait blocks until pending cache writes are applied. Test hook; ristretto
// applies sets asynchronously.
func (c *CachedResolver) Wait() {
	c.cache.Wait()
}

// Close releases the cache's internal goroutines.
func (c *CachedResolver) Close() {
	c.cache.Close()
}
