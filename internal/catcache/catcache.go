// Package catcache provides a small TTL'd read-through cache for
// catalog query results. Redshift system views are slow to scan on busy
// clusters and their contents change rarely, so catalog tools serve
// cached results until the TTL lapses or the caller forces a refresh.
package catcache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache is a read-through cache keyed by string. Entries expire after
// the TTL given at construction and the least recently used entry is
// evicted when the cache is full. Safe for concurrent use.
type Cache[T any] struct {
	lru *expirable.LRU[string, T]
}

// New returns a cache holding up to size entries for at most ttl each.
func New[T any](size int, ttl time.Duration) *Cache[T] {
	return &Cache[T]{
		lru: expirable.NewLRU[string, T](size, nil, ttl),
	}
}

// GetOrFill returns the cached value for key, calling fill on a miss
// and caching its result. With force set the cached entry is ignored
// and replaced by a fresh fill. A fill error is returned as-is and
// nothing is cached for it, so the next call retries.
func (c *Cache[T]) GetOrFill(key string, force bool, fill func() (T, error)) (T, error) {
	if !force {
		if v, ok := c.lru.Get(key); ok {
			return v, nil
		}
	}
	v, err := fill()
	if err != nil {
		var zero T
		return zero, err
	}
	c.lru.Add(key, v)
	return v, nil
}

// Purge drops every cached entry.
func (c *Cache[T]) Purge() {
	c.lru.Purge()
}
