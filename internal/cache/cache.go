// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

package cache

import (
	"fmt"
	"sync"
	"time"
)

// entry is a node in the insertion-ordered doubly-linked list.
type entry[V any] struct {
	key       string
	value     V
	prev      *entry[V]
	next      *entry[V]
	expiresAt time.Time
}

// Cache is a thread-safe in-memory cache with per-entry TTL and
// bounded capacity.
//
// Expiration is lazy: an entry past its deadline is removed only when a
// read observes it. There is no background sweeper, so Len may count
// entries that would miss on the next Get.
//
// Eviction at capacity is strictly insertion-ordered (FIFO): the entry
// that has lived in the cache longest is removed, regardless of how
// recently it was read. Get never reorders entries; only Set on an
// existing key moves it to the newest position (and resets its TTL).
//
// This implementation uses a doubly-linked list for ordering and a
// hashmap for lookups, giving O(1) Get, Set, Delete, and eviction.
type Cache[V any] struct {
	mu sync.Mutex

	// capacity is the maximum number of entries
	capacity int

	// ttl is the time-to-live applied to every entry on Set
	ttl time.Duration

	// items maps keys to linked list nodes for O(1) lookup
	items map[string]*entry[V]

	// head and tail are sentinel nodes for the doubly-linked list.
	// head.next is the newest insertion, tail.prev is the oldest.
	head *entry[V]
	tail *entry[V]

	// now is replaceable in tests
	now func() time.Time

	hits        int64
	misses      int64
	evictions   int64
	expirations int64
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits        int64   `json:"hits"`
	Misses      int64   `json:"misses"`
	Evictions   int64   `json:"evictions"`
	Expirations int64   `json:"expirations"`
	Size        int     `json:"size"`
	Capacity    int     `json:"capacity"`
	HitRate     float64 `json:"hit_rate"`
}

// InvalidKeyError reports a key the cache refuses to store.
// Keys are derived via GenerateKey in normal operation, so this
// surfaces programming errors rather than user input problems.
type InvalidKeyError struct {
	Key string
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid cache key %q: keys must be non-empty", e.Key)
}

// New creates a cache with the given capacity and TTL.
// Non-positive values fall back to safe defaults.
func New[V any](capacity int, ttl time.Duration) *Cache[V] {
	if capacity <= 0 {
		capacity = 5000
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	c := &Cache[V]{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*entry[V], capacity),
		head:     &entry[V]{},
		tail:     &entry[V]{},
		now:      time.Now,
	}

	c.head.next = c.tail
	c.tail.prev = c.head

	return c
}

// Get retrieves a value by key.
//
// An entry whose deadline has passed is removed here and reported as a
// miss; this is the only path on which expiration takes effect. Get
// does not refresh the entry's TTL or its position in insertion order.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V

	c.mu.Lock()
	defer c.mu.Unlock()

	e, exists := c.items[key]
	if !exists {
		c.misses++
		return zero, false
	}

	if c.now().After(e.expiresAt) {
		c.remove(e)
		c.expirations++
		c.misses++
		return zero, false
	}

	c.hits++
	return e.value, true
}

// Set stores a value under key with the cache's TTL.
//
// Overwriting an existing key resets its deadline and makes it the
// newest entry. Inserting into a full cache first evicts the oldest
// entry by insertion order.
func (c *Cache[V]) Set(key string, value V) error {
	if key == "" {
		return &InvalidKeyError{Key: key}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)

	if e, exists := c.items[key]; exists {
		e.value = value
		e.expiresAt = expiresAt
		c.unlink(e)
		c.pushFront(e)
		return nil
	}

	for len(c.items) >= c.capacity {
		c.evictOldest()
	}

	e := &entry[V]{
		key:       key,
		value:     value,
		expiresAt: expiresAt,
	}
	c.pushFront(e)
	c.items[key] = e

	return nil
}

// Delete removes an entry by key.
// Returns true if the entry was present.
func (c *Cache[V]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, exists := c.items[key]; exists {
		c.remove(e)
		return true
	}
	return false
}

// Clear removes all entries. Counters are preserved.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*entry[V], c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
}

// Len returns the current number of entries, including any that have
// expired but not yet been observed by a read.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Keys returns a snapshot of all keys from newest to oldest insertion.
// Intended for diagnostics endpoints, not hot paths.
func (c *Cache[V]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.items))
	for e := c.head.next; e != c.tail; e = e.next {
		keys = append(keys, e.key)
	}
	return keys
}

// Stats returns a snapshot of the cache counters.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
		Expirations: c.expirations,
		Size:        len(c.items),
		Capacity:    c.capacity,
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	return s
}

// Internal methods (must be called with lock held)

// pushFront links an entry in at the newest position.
func (c *Cache[V]) pushFront(e *entry[V]) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

// unlink detaches an entry from the list without touching the map.
func (c *Cache[V]) unlink(e *entry[V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
}

// remove detaches an entry from both the list and the map.
func (c *Cache[V]) remove(e *entry[V]) {
	c.unlink(e)
	delete(c.items, e.key)
}

// evictOldest removes the structurally oldest entry (tail.prev).
func (c *Cache[V]) evictOldest() {
	oldest := c.tail.prev
	if oldest == c.head {
		return // list is empty
	}
	c.remove(oldest)
	c.evictions++
}
