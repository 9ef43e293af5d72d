package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisNameCache implements NameCache using Redis. Suitable for distributed
// deployments where multiple instances should share resolved names.
type RedisNameCache struct {
	client     *redis.Client
	defaultTTL time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisNameCache creates a new Redis-backed name cache
func NewRedisNameCache(cfg RedisConfig, defaultTTL time.Duration) (*RedisNameCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisNameCacheWithClient(client, defaultTTL), nil
}

// NewRedisNameCacheWithClient creates a cache with an existing Redis client.
// This is useful for testing or when sharing a client across components.
func NewRedisNameCacheWithClient(client *redis.Client, defaultTTL time.Duration) *RedisNameCache {
	if defaultTTL == 0 {
		defaultTTL = 5 * time.Minute
	}
	return &RedisNameCache{
		client:     client,
		defaultTTL: defaultTTL,
	}
}

// Get retrieves a cached name
func (c *RedisNameCache) Get(ctx context.Context, kind NameKind, id uuid.UUID) (string, bool, error) {
	name, err := c.client.Get(ctx, cacheKey(kind, id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get cached name: %w", err)
	}
	return name, true, nil
}

// Set stores a name with a TTL
func (c *RedisNameCache) Set(ctx context.Context, kind NameKind, id uuid.UUID, name string, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	if err := c.client.Set(ctx, cacheKey(kind, id), name, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache name: %w", err)
	}
	return nil
}

// Delete removes a cached name
func (c *RedisNameCache) Delete(ctx context.Context, kind NameKind, id uuid.UUID) error {
	if err := c.client.Del(ctx, cacheKey(kind, id)).Err(); err != nil {
		return fmt.Errorf("failed to delete cached name: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisNameCache) Close() error {
	return c.client.Close()
}

// Ensure RedisNameCache implements NameCache
var _ NameCache = (*RedisNameCache)(nil)
