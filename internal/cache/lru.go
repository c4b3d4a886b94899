// Package cache memoizes parsed tables by content fingerprint.
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// DefaultMaxEntries bounds a cache created with a non-positive size.
const DefaultMaxEntries = 32

// LRU is a size-bounded cache. Values should be immutable; they are handed
// out to every caller as-is.
type LRU[T any] struct {
	mu      sync.Mutex
	maxSize int
	items   map[string]*list.Element
	order   *list.List
	hits    int
	misses  int
}

type entry[T any] struct {
	key   string
	value T
}

// Stats reports cache effectiveness.
type Stats struct {
	Size   int
	Hits   int
	Misses int
}

// New creates an LRU holding at most maxSize entries.
func New[T any](maxSize int) *LRU[T] {
	if maxSize <= 0 {
		maxSize = DefaultMaxEntries
	}
	return &LRU[T]{
		maxSize: maxSize,
		items:   make(map[string]*list.Element),
		order:   list.New(),
	}
}

// Get returns the value for key and marks it most recently used.
func (c *LRU[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, ok := c.items[key]
	if !ok {
		c.misses++
		return zero, false
	}

	c.order.MoveToFront(elem)
	c.hits++
	return elem.Value.(*entry[T]).value, true
}

// Set stores value under key, evicting the least recently used entry when
// full.
func (c *LRU[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := &entry[T]{key: key, value: value}

	if elem, ok := c.items[key]; ok {
		elem.Value = e
		c.order.MoveToFront(elem)
		return
	}

	c.items[key] = c.order.PushFront(e)
	if c.order.Len() > c.maxSize {
		if oldest := c.order.Back(); oldest != nil {
			c.remove(oldest)
		}
	}
}

// Stats returns a snapshot of size and hit counters.
func (c *LRU[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Size: len(c.items), Hits: c.hits, Misses: c.misses}
}

func (c *LRU[T]) remove(elem *list.Element) {
	e := elem.Value.(*entry[T])
	delete(c.items, e.key)
	c.order.Remove(elem)
}

// Fingerprint returns the hex SHA-256 of data, used as the cache key for raw
// file contents.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
