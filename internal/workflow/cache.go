package workflow

import (
	"sync"

	"github.com/google/uuid"
)

// Cache holds the last fetched copy of a collection keyed by id. Items keep
// the order the server returned them in; new ids are appended.
type Cache[T any] struct {
	mu    sync.RWMutex
	key   func(T) uuid.UUID
	order []uuid.UUID
	items map[uuid.UUID]T
}

func NewCache[T any](key func(T) uuid.UUID) *Cache[T] {
	return &Cache[T]{
		key:   key,
		items: make(map[uuid.UUID]T),
	}
}

// Replace discards the cached collection in favour of a fresh fetch.
func (c *Cache[T]) Replace(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = c.order[:0]
	c.items = make(map[uuid.UUID]T, len(items))
	c.upsertLocked(items)
}

// Upsert inserts new items and overwrites cached ones with the same id.
func (c *Cache[T]) Upsert(items ...T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.upsertLocked(items)
}

func (c *Cache[T]) upsertLocked(items []T) {
	for _, it := range items {
		id := c.key(it)
		if _, ok := c.items[id]; !ok {
			c.order = append(c.order, id)
		}
		c.items[id] = it
	}
}

func (c *Cache[T]) Get(id uuid.UUID) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	it, ok := c.items[id]
	return it, ok
}

func (c *Cache[T]) Remove(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[id]; !ok {
		return
	}
	delete(c.items, id)
	for i, o := range c.order {
		if o == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *Cache[T]) Clear() {
	c.Replace(nil)
}

func (c *Cache[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out
}

// Filter returns the cached items for which keep is true.
func (c *Cache[T]) Filter(keep func(T) bool) []T {
	var out []T
	for _, it := range c.Items() {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}
