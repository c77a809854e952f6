// Package imagecache keeps recently transformed images keyed by role and
// source URL, releasing each handle's resource exactly when it leaves the
// cache: on LRU eviction, on replacement by a different handle, on Remove, and
// on Close.
package imagecache

import (
	"fmt"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/five82/pinterval/internal/logging"
)

// DefaultCapacity bounds the number of live transformed resources.
const DefaultCapacity = 120

// Role distinguishes full viewer renders from history thumbnails of the same URL.
type Role string

const (
	RoleViewer    Role = "viewer"
	RoleThumbnail Role = "thumbnail"
)

// Key identifies a cached transform.
type Key struct {
	Role Role
	URL  string
}

// String renders the key as "role:url".
func (k Key) String() string {
	return string(k.Role) + ":" + k.URL
}

// Handle is an owned resource the cache releases on eviction.
type Handle interface {
	Release() error
}

// Cache is an LRU of transformed image handles. It is safe for concurrent use.
type Cache[H Handle] struct {
	mu     sync.Mutex
	lru    *lru.Cache[Key, H]
	logger *slog.Logger
}

// New returns a cache holding at most capacity entries.
func New[H Handle](capacity int, logger *slog.Logger) (*Cache[H], error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = logging.Discard()
	}
	c := &Cache[H]{logger: logger.With("component", "imagecache")}
	inner, err := lru.NewWithEvict[Key, H](capacity, c.release)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}
	c.lru = inner
	return c, nil
}

func (c *Cache[H]) release(key Key, h H) {
	if err := h.Release(); err != nil {
		c.logger.Warn("release cached resource", "key", key.String(), "error", err)
	}
}

// Get returns the handle for key and marks it most recently used.
func (c *Cache[H]) Get(key Key) (H, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Get(key)
}

// peek returns the handle for key without touching recency.
func (c *Cache[H]) peek(key Key) (H, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Peek(key)
}

// Put stores h under key as most recently used. A different handle already
// stored under key is released first; re-putting the same handle only
// refreshes its recency. Inserting beyond capacity evicts and releases the
// least recently used entry.
func (c *Cache[H]) Put(key Key, h H) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.lru.Peek(key); ok {
		if any(old) == any(h) {
			c.lru.Get(key)
			return
		}
		c.lru.Remove(key)
	}
	c.lru.Add(key, h)
}

// Remove drops key and releases its handle.
func (c *Cache[H]) Remove(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Remove(key)
}

// Len returns the number of live entries.
func (c *Cache[H]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// keys returns keys from least to most recently used.
func (c *Cache[H]) keys() []Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Keys()
}

// Close releases every handle and empties the cache.
func (c *Cache[H]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}
