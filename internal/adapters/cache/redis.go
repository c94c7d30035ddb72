package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jsamuelsen/insurance-quote-service/internal/domain"
	"github.com/jsamuelsen/insurance-quote-service/internal/ports"
)

const redisServiceName = "redis"

var (
	_ ports.Cache         = (*Redis)(nil)
	_ ports.HealthChecker = (*Redis)(nil)
)

// Redis is a ports.Cache backed by a Redis server. Keys are namespaced with
// a prefix so several services can share one instance.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to the server at rawURL (redis://[:password@]host:port/db)
// and pings it.
func NewRedis(ctx context.Context, rawURL, prefix string) (*Redis, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Redis{client: client, prefix: prefix}, nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

// Get implements ports.Cache.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.NewNotFoundError(entityCacheKey, key)
	}

	if err != nil {
		return nil, domain.NewUnavailableError(redisServiceName, err.Error())
	}

	return b, nil
}

// Set implements ports.Cache.
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.prefix+key, value, ttl).Err(); err != nil {
		return domain.NewUnavailableError(redisServiceName, err.Error())
	}

	return nil
}

// Name implements ports.HealthChecker.
func (r *Redis) Name() string { return redisServiceName }

// Optional marks the cache as non-critical: lookups go straight to the
// service while Redis is down.
func (r *Redis) Optional() bool { return true }

// Check implements ports.HealthChecker.
func (r *Redis) Check(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the underlying connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
