package common

import (
	"bytes"
	"strings"
	"sync"
	"time"
)

// ResponseCache memoizes raw response bodies with a hard TTL and exposes a
// softer staleness check so callers can refresh before data expires.
//
// Expiry is checked lazily on read; there is no background sweeper.
type ResponseCache interface {
	Get(key string) (value []byte, found bool)
	Set(key string, value []byte, ttl time.Duration)
	IsStale(key string, staleTime time.Duration) bool
	Entry(key string) (CacheEntry, bool)
	Delete(key string)
	DeleteMatching(pattern string) int
	Clear()
	Len() int
}

// CacheEntry is a stored response. Entries are replaced wholesale, never
// patched; values are copied in and out so callers never share the stored bytes.
type CacheEntry struct {
	Key       string
	Value     []byte
	StoredAt  time.Time
	ExpiresAt time.Time
}

// Age returns how long ago the entry was stored, relative to now.
func (e CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.StoredAt)
}

// CacheOption configures a memoryCache.
type CacheOption func(*memoryCache)

// WithCacheClock replaces time.Now, mostly for tests.
func WithCacheClock(now func() time.Time) CacheOption {
	return func(c *memoryCache) {
		c.now = now
	}
}

var _ ResponseCache = (*memoryCache)(nil)

type memoryCache struct {
	mu    sync.Mutex
	store map[string]CacheEntry
	now   func() time.Time
}

// NewResponseCache returns an empty in-memory ResponseCache.
func NewResponseCache(opts ...CacheOption) ResponseCache {
	c := &memoryCache{
		store: make(map[string]CacheEntry),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// live returns the entry for key, purging it if it has expired.
// Caller must hold c.mu.
func (c *memoryCache) live(key string) (CacheEntry, bool) {
	entry, ok := c.store[key]
	if !ok {
		return CacheEntry{}, false
	}
	if !c.now().Before(entry.ExpiresAt) {
		delete(c.store, key)
		return CacheEntry{}, false
	}
	return entry, true
}

func (c *memoryCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.live(key)
	if !ok {
		return nil, false
	}
	return bytes.Clone(entry.Value), true
}

func (c *memoryCache) Set(key string, value []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.store[key] = CacheEntry{
		Key:       key,
		Value:     bytes.Clone(value),
		StoredAt:  now,
		ExpiresAt: now.Add(ttl),
	}
}

func (c *memoryCache) IsStale(key string, staleTime time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.live(key)
	if !ok {
		return true
	}
	return entry.Age(c.now()) > staleTime
}

func (c *memoryCache) Entry(key string) (CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.live(key)
	if ok {
		entry.Value = bytes.Clone(entry.Value)
	}
	return entry, ok
}

func (c *memoryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
}

// DeleteMatching removes every key containing pattern and returns how many were removed.
func (c *memoryCache) DeleteMatching(pattern string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.store {
		if strings.Contains(key, pattern) {
			delete(c.store, key)
			removed++
		}
	}
	return removed
}

func (c *memoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[string]CacheEntry)
}

// Len counts unexpired entries.
func (c *memoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := 0
	for _, entry := range c.store {
		if now.Before(entry.ExpiresAt) {
			n++
		}
	}
	return n
}
