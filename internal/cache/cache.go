package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jmwislek/order-notify-service/internal/models"
)

// Cache defines the interface for weather reading cache implementations.
// Get returns the cached reading if present and not expired, Set stores a reading with TTL.
type Cache interface {
	Get(ctx context.Context, key string) (models.WeatherReading, bool, error)
	Set(ctx context.Context, key string, value models.WeatherReading, ttl time.Duration) error
}

// InMemory implements Cache using a mutex-guarded map with TTL-based expiration.
// Expired entries are removed on access. Safe for concurrent use.
type InMemory struct {
	mu   sync.Mutex
	data map[string]cacheEntry
}

// cacheEntry stores a cached reading with its expiration timestamp.
type cacheEntry struct {
	value     models.WeatherReading
	expiresAt time.Time
}

// NewInMemory creates a new in-memory cache instance.
func NewInMemory() *InMemory {
	return &InMemory{
		data: make(map[string]cacheEntry),
	}
}

// Get retrieves the cached reading for the key if present and not expired.
// Returns (reading, true, nil) on cache hit, (zero, false, nil) on miss or expiration.
// Expired entries are removed from the cache on access.
func (c *InMemory) Get(ctx context.Context, key string) (models.WeatherReading, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.data[key]
	if !ok {
		return models.WeatherReading{}, false, nil
	}

	if time.Now().After(entry.expiresAt) {
		delete(c.data, key)
		return models.WeatherReading{}, false, nil
	}

	return entry.value, true, nil
}

// Set stores a reading in the cache with the specified TTL duration.
// The entry expires after TTL elapses and is removed on the next Get access.
func (c *InMemory) Set(ctx context.Context, key string, value models.WeatherReading, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = cacheEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}
