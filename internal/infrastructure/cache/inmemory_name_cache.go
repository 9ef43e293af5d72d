package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const cleanupInterval = 30 * time.Second

// InMemoryNameCache implements NameCache using process-local storage. It is
// the default backend for single-instance deployments and tests.
type InMemoryNameCache struct {
	names      sync.Map // map[string]*nameEntry
	defaultTTL time.Duration
	stopCh     chan struct{}
	stopped    int32
}

type nameEntry struct {
	name      string
	expiresAt time.Time
}

func (e *nameEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// NewInMemoryNameCache creates a new in-memory name cache
func NewInMemoryNameCache(defaultTTL time.Duration) *InMemoryNameCache {
	if defaultTTL == 0 {
		defaultTTL = 5 * time.Minute
	}
	c := &InMemoryNameCache{
		defaultTTL: defaultTTL,
		stopCh:     make(chan struct{}),
	}
	go c.cleanupExpired()
	return c
}

// Get retrieves a cached name
func (c *InMemoryNameCache) Get(_ context.Context, kind NameKind, id uuid.UUID) (string, bool, error) {
	key := cacheKey(kind, id)
	if value, ok := c.names.Load(key); ok {
		entry := value.(*nameEntry)
		if !entry.isExpired() {
			return entry.name, true, nil
		}
		c.names.Delete(key)
	}
	return "", false, nil
}

// Set stores a name with a TTL
func (c *InMemoryNameCache) Set(_ context.Context, kind NameKind, id uuid.UUID, name string, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	c.names.Store(cacheKey(kind, id), &nameEntry{
		name:      name,
		expiresAt: time.Now().Add(ttl),
	})
	return nil
}

// Delete removes a cached name
func (c *InMemoryNameCache) Delete(_ context.Context, kind NameKind, id uuid.UUID) error {
	c.names.Delete(cacheKey(kind, id))
	return nil
}

// Close stops the cleanup goroutine. Only closes once.
func (c *InMemoryNameCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// cleanupExpired periodically removes expired entries
func (c *InMemoryNameCache) cleanupExpired() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.names.Range(func(key, value any) bool {
				if value.(*nameEntry).isExpired() {
					c.names.Delete(key)
				}
				return true
			})
		}
	}
}

// Ensure InMemoryNameCache implements NameCache
var _ NameCache = (*InMemoryNameCache)(nil)
