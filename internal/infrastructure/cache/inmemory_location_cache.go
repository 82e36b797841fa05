// Package cache holds the location-id caches shared by sync operations.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/invsync/backend/internal/domain/integration"
)

type locationKey struct {
	platform integration.PlatformCode
	ownerID  uuid.UUID
}

type locationEntry struct {
	locationID string
	expiresAt  time.Time
}

// InMemoryLocationCache keeps resolved locations in process memory.
// Suitable for single-instance deployments and tests; expired entries are
// dropped lazily on read.
type InMemoryLocationCache struct {
	mu      sync.RWMutex
	entries map[locationKey]locationEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewInMemoryLocationCache creates a cache whose entries live for ttl.
// A zero ttl keeps entries until restart.
func NewInMemoryLocationCache(ttl time.Duration) *InMemoryLocationCache {
	return &InMemoryLocationCache{
		entries: make(map[locationKey]locationEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached location, or "" on a miss
func (c *InMemoryLocationCache) Get(_ context.Context, platform integration.PlatformCode, ownerID uuid.UUID) (string, error) {
	key := locationKey{platform: platform, ownerID: ownerID}

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return "", nil
	}
	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && cur == e {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return "", nil
	}
	return e.locationID, nil
}

// Set stores a location; an empty id removes the entry
func (c *InMemoryLocationCache) Set(_ context.Context, platform integration.PlatformCode, ownerID uuid.UUID, locationID string) error {
	key := locationKey{platform: platform, ownerID: ownerID}

	c.mu.Lock()
	defer c.mu.Unlock()
	if locationID == "" {
		delete(c.entries, key)
		return nil
	}
	e := locationEntry{locationID: locationID}
	if c.ttl > 0 {
		e.expiresAt = c.now().Add(c.ttl)
	}
	c.entries[key] = e
	return nil
}

// Len returns the number of stored entries, expired ones included
func (c *InMemoryLocationCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

var _ integration.LocationCache = (*InMemoryLocationCache)(nil)
