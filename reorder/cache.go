package reorder

import (
	"fmt"
	"slices"
	"sync"
)

// ScopeKey names the cached list of kind entities under parentID, for
// example ScopeKey("menus", restaurantID).
func ScopeKey(kind, parentID string) string {
	return fmt.Sprintf("%s?parent=%s", kind, parentID)
}

// Cache holds client-side ordered lists keyed by scope. It is safe for
// concurrent use.
type Cache[T any] struct {
	mu      sync.RWMutex
	entries map[string][]T
}

func NewCache[T any]() *Cache[T] {
	return &Cache[T]{entries: make(map[string][]T)}
}

// Get returns a copy of the list stored under key.
func (c *Cache[T]) Get(key string) ([]T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items, ok := c.entries[key]
	return slices.Clone(items), ok
}

func (c *Cache[T]) Set(key string, items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = slices.Clone(items)
}

// Snapshot captures one scope so it can be put back exactly by Restore.
type Snapshot[T any] struct {
	key     string
	items   []T
	present bool
}

func (c *Cache[T]) Snapshot(key string) Snapshot[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items, ok := c.entries[key]
	return Snapshot[T]{key: key, items: slices.Clone(items), present: ok}
}

// Restore replaces the scope with the snapshot's contents, removing it if
// it did not exist when the snapshot was taken.
func (c *Cache[T]) Restore(s Snapshot[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !s.present {
		delete(c.entries, s.key)
		return
	}
	c.entries[s.key] = slices.Clone(s.items)
}
