package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/invsync/backend/internal/domain/integration"
	"github.com/redis/go-redis/v9"
)

const defaultLocationKeyPrefix = "invsync:location:"

// RedisLocationCache shares resolved locations across service instances
type RedisLocationCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisLocationCache connects to Redis and verifies the connection
func NewRedisLocationCache(ctx context.Context, opts *redis.Options, ttl time.Duration) (*RedisLocationCache, error) {
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisLocationCacheWithClient(client, "", ttl), nil
}

// NewRedisLocationCacheWithClient wraps an existing client
func NewRedisLocationCacheWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisLocationCache {
	if keyPrefix == "" {
		keyPrefix = defaultLocationKeyPrefix
	}
	return &RedisLocationCache{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func (c *RedisLocationCache) key(platform integration.PlatformCode, ownerID uuid.UUID) string {
	return c.keyPrefix + string(platform) + ":" + ownerID.String()
}

// Get returns the cached location, or "" on a miss
func (c *RedisLocationCache) Get(ctx context.Context, platform integration.PlatformCode, ownerID uuid.UUID) (string, error) {
	v, err := c.client.Get(ctx, c.key(platform, ownerID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read cached location: %w", err)
	}
	return v, nil
}

// Set stores a location with the cache TTL; an empty id removes the entry
func (c *RedisLocationCache) Set(ctx context.Context, platform integration.PlatformCode, ownerID uuid.UUID, locationID string) error {
	key := c.key(platform, ownerID)
	if locationID == "" {
		if err := c.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("failed to clear cached location: %w", err)
		}
		return nil
	}
	if err := c.client.Set(ctx, key, locationID, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache location: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisLocationCache) Close() error {
	return c.client.Close()
}

var _ integration.LocationCache = (*RedisLocationCache)(nil)
