// Package cache provides a small read-through cache for hot storefront
// reads, backed by Redis when configured and a no-op otherwise.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ErrMiss is returned when the requested key is absent.
var ErrMiss = errors.New("cache: miss")

// Cache is the minimal surface the handlers need.
type Cache interface {
	Get(ctx context.Context, key string, dst any) error
	Set(ctx context.Context, key string, val any, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Redis is a Cache backed by a go-redis client. Values are stored as JSON.
type Redis struct {
	client *redis.Client
	lg     *zap.Logger
}

// NewRedis connects to the given address and verifies it with a ping.
func NewRedis(ctx context.Context, addr string, lg *zap.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "ping redis")
	}
	return &Redis{client: client, lg: lg}, nil
}

// Get unmarshals the cached value for key into dst, or returns ErrMiss.
func (c *Redis) Get(ctx context.Context, key string, dst any) error {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		return errors.Wrap(err, "get")
	}
	return json.Unmarshal(raw, dst)
}

// Set stores val under key for ttl.
func (c *Redis) Set(ctx context.Context, key string, val any, ttl time.Duration) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return errors.Wrap(err, "marshal")
	}
	return c.client.Set(ctx, key, raw, ttl).Err()
}

// Invalidate drops the given keys. Failures are logged, not returned,
// so a flaky cache never blocks a write path.
func (c *Redis) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.lg.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
	return nil
}

// Ping verifies the connection is alive. Used by the readiness probe.
func (c *Redis) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (c *Redis) Close() error {
	return c.client.Close()
}

// Noop satisfies Cache without storing anything. Used when no Redis
// address is configured.
type Noop struct{}

func (Noop) Get(context.Context, string, any) error                { return ErrMiss }
func (Noop) Set(context.Context, string, any, time.Duration) error { return nil }
func (Noop) Invalidate(context.Context, ...string) error           { return nil }

var (
	_ Cache = (*Redis)(nil)
	_ Cache = Noop{}
)
