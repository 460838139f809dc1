// Package cache provides a generic in-process TTL key-value store.
//
// Expiry is observation-driven: a stale entry is removed the first time
// it is read after its refresh window has elapsed. There is no
// background sweeper.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Cache maps keys to values that expire lazily once the refresh window
// has passed since the value was last set.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	window  time.Duration
	now     func() time.Time
	entries map[K]entry[V]
}

// New creates a Cache whose entries expire window after they were set.
func New[K comparable, V any](window time.Duration) *Cache[K, V] {
	return NewWithClock[K, V](window, time.Now)
}

// NewWithClock is New with an injectable clock, used in tests.
func NewWithClock[K comparable, V any](window time.Duration, now func() time.Time) *Cache[K, V] {
	return &Cache[K, V]{
		window:  window,
		now:     now,
		entries: make(map[K]entry[V]),
	}
}

// Set stores value under key, resetting its refresh window.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, storedAt: c.now()}
}

// Get returns the value for key. A stale entry is deleted and reported
// as absent.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.now().Sub(e.storedAt) > c.window {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Has reports whether key holds a fresh value.
func (c *Cache[K, V]) Has(key K) bool {
	_, ok := c.Get(key)
	return ok
}

// Delete removes key.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes all entries.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]entry[V])
}

// Len returns the number of stored entries, including any that have not
// yet been observed as stale.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
