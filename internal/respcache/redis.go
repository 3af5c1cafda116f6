package respcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a [Cache] backed by a Redis server, for deployments where cached
// responses should survive restarts or be shared between replicas. TTL
// handling is delegated to Redis key expiry.
//
// Safe for concurrent use; the underlying client pools connections.
type Redis struct {
	client *redis.Client
}

// Compile-time interface assertion.
var _ Cache = (*Redis)(nil)

// NewRedis creates a Redis cache talking to addr (e.g., "redis:6379").
// The connection is verified with a PING before returning.
func NewRedis(ctx context.Context, addr string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("respcache: ping redis %q: %w", addr, err)
	}
	return &Redis{client: client}, nil
}

// Get implements [Cache].
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("respcache: redis get: %w", err)
	}
	return val, true, nil
}

// Set implements [Cache].
func (r *Redis) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("respcache: redis set: %w", err)
	}
	return nil
}

// Close releases the underlying Redis connections.
func (r *Redis) Close() error {
	return r.client.Close()
}
