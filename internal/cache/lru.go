// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

// Package cache provides a bounded, expiring LRU set used to remember recent
// events in memory, such as which match notices were sent lately.
package cache

import (
	"sync"
	"time"
)

// lruEntry is a node of the recency list.
type lruEntry struct {
	key       string
	recorded  time.Time
	expiresAt time.Time
	prev      *lruEntry
	next      *lruEntry
}

// LRU is a thread-safe least-recently-used set of keys with a per-entry TTL.
//
// Key features:
//   - O(1) Seen, Get, Add, Remove
//   - O(1) eviction of the least recently used key when full
//   - lazy expiration on access plus CleanupExpired for sweeps
//
// A doubly-linked list keeps recency order and a map gives O(1) lookup.
type LRU struct {
	mu sync.Mutex

	capacity int
	ttl      time.Duration
	now      func() time.Time

	items map[string]*lruEntry

	// head.next is the most recently used, tail.prev the least.
	head *lruEntry
	tail *lruEntry

	hits   int64
	misses int64
}

// Option configures an LRU.
type Option func(*LRU)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *LRU) { c.now = now }
}

// NewLRU creates an LRU holding at most capacity keys for ttl each.
func NewLRU(capacity int, ttl time.Duration, opts ...Option) *LRU {
	if capacity <= 0 {
		capacity = 10000
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	c := &LRU{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		items:    make(map[string]*lruEntry, capacity),
		head:     &lruEntry{},
		tail:     &lruEntry{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the entry lifetime.
func (c *LRU) TTL() time.Duration {
	return c.ttl
}

// Get returns when key was recorded, if it is present and not expired.
func (c *LRU) Get(key string) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.live(key)
	if !ok {
		c.misses++
		return time.Time{}, false
	}
	c.moveToFront(entry)
	c.hits++
	return entry.recorded, true
}

// Add records key now, replacing any previous entry.
func (c *LRU) Add(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(key)
}

// Seen reports whether key is present and unexpired. When it is not, key is
// recorded in the same critical section, so concurrent callers racing on the
// same key see exactly one false.
func (c *LRU) Seen(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.live(key); ok {
		c.moveToFront(entry)
		c.hits++
		return true
	}
	c.record(key)
	c.misses++
	return false
}

// Remove deletes key and reports whether it was present.
func (c *LRU) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.items[key]; ok {
		c.removeEntry(entry)
		return true
	}
	return false
}

// Len returns the number of stored keys, expired ones included until they
// are touched or swept.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// CleanupExpired removes expired keys and returns how many were removed.
func (c *LRU) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for entry := c.tail.prev; entry != c.head; {
		prev := entry.prev
		if now.After(entry.expiresAt) {
			c.removeEntry(entry)
			removed++
		}
		entry = prev
	}
	return removed
}

// Stats returns hit and miss counts and the current size.
func (c *LRU) Stats() (hits, misses int64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, len(c.items)
}

// Internal methods (must be called with lock held)

// live returns the entry for key, dropping it if it has expired.
func (c *LRU) live(key string) (*lruEntry, bool) {
	entry, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.removeEntry(entry)
		return nil, false
	}
	return entry, true
}

func (c *LRU) record(key string) {
	now := c.now()
	if entry, ok := c.items[key]; ok {
		entry.recorded = now
		entry.expiresAt = now.Add(c.ttl)
		c.moveToFront(entry)
		return
	}

	entry := &lruEntry{key: key, recorded: now, expiresAt: now.Add(c.ttl)}
	c.addToFront(entry)
	c.items[key] = entry

	for len(c.items) > c.capacity {
		c.evictOldest()
	}
}

func (c *LRU) addToFront(entry *lruEntry) {
	entry.prev = c.head
	entry.next = c.head.next
	c.head.next.prev = entry
	c.head.next = entry
}

func (c *LRU) moveToFront(entry *lruEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	c.addToFront(entry)
}

func (c *LRU) removeEntry(entry *lruEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	delete(c.items, entry.key)
}

func (c *LRU) evictOldest() {
	oldest := c.tail.prev
	if oldest == c.head {
		return
	}
	c.removeEntry(oldest)
}
