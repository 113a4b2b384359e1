package utils

import (
	"sync"
	"time"
)

type cacheEntry[T any] struct {
	value      T
	expiration time.Time
}

// Cache is an in-process keyed cache whose entries expire after the
// duration given to Set.
type Cache[T any] struct {
	entries map[string]cacheEntry[T]
	mutex   sync.RWMutex
	now     func() time.Time
}

// NewCache initializes an empty cache.
func NewCache[T any]() *Cache[T] {
	return &Cache[T]{
		entries: make(map[string]cacheEntry[T]),
		now:     time.Now,
	}
}

// Set stores value under key until duration elapses.
func (c *Cache[T]) Set(key string, value T, duration time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[key] = cacheEntry[T]{value: value, expiration: c.now().Add(duration)}
}

// Get returns the value for key if it has not expired.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.now().After(entry.expiration) {
		var zero T
		return zero, false
	}
	return entry.value, true
}

// Delete removes key.
func (c *Cache[T]) Delete(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.entries, key)
}

// Clear removes every cached value.
func (c *Cache[T]) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]cacheEntry[T])
}
