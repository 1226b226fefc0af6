package impl

import (
	"sync"
	"time"

	"waypoint/internal/domain/entity"
	"waypoint/internal/domain/service"
)

// LocationCache is a single-slot, time-boxed cache for the last resolved
// location. Deliberately minimal: only "current device location" is cached;
// saved addresses live in the durable store and carry no TTL.
type LocationCache struct {
	mu        sync.Mutex
	ttl       time.Duration
	clock     service.Clock
	location  *entity.Location
	writtenAt time.Time
}

// NewLocationCache creates a cache with the given TTL.
func NewLocationCache(ttl time.Duration, clock service.Clock) *LocationCache {
	return &LocationCache{
		ttl:   ttl,
		clock: clock,
	}
}

// Get returns the stored location only while it is fresher than the TTL.
func (c *LocationCache) Get() *entity.Location {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.location == nil {
		return nil
	}
	if c.clock.Now().Sub(c.writtenAt) >= c.ttl {
		return nil
	}
	loc := *c.location

	return &loc
}

// Set overwrites the slot unconditionally and stamps the current time.
func (c *LocationCache) Set(location *entity.Location) {
	c.mu.Lock()
	defer c.mu.Unlock()

	loc := *location
	c.location = &loc
	c.writtenAt = c.clock.Now()
}

// Clear empties the slot (forced refresh).
func (c *LocationCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.location = nil
	c.writtenAt = time.Time{}
}
