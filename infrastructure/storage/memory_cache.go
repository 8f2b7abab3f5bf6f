package storage

import (
	"sync"

	"ui_resolver/domain/entities"
	"ui_resolver/domain/interfaces"
)

// MemoryCache is an RWMutex guarded map of merged objects
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*entities.UIObject
}

// NewMemoryCache - creates an empty cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]*entities.UIObject)}
}

// Get - returns the cached object for path
func (c *MemoryCache) Get(path string) (*entities.UIObject, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	obj, ok := c.entries[path]
	return obj, ok
}

// PutIfAbsent - stores obj unless another goroutine got there first
func (c *MemoryCache) PutIfAbsent(path string, obj *entities.UIObject) *entities.UIObject {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[path]; ok {
		return existing
	}
	c.entries[path] = obj
	return obj
}

// Clear - drops every entry
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entities.UIObject)
}

// Len - returns the number of cached objects
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

var _ interfaces.ObjectCache = (*MemoryCache)(nil)
