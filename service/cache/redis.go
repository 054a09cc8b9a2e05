package cache

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/reavers-game/go-reavers/service/logger"
	"github.com/reavers-game/go-reavers/util"
)

// RedisInvalidator drops cached reads from a shared redis cache
type RedisInvalidator struct {
	client *redis.Client
	prefix string
}

// NewRedisInvalidator returns an invalidator backed by the redis at addr.
// Keys are namespaced under prefix.
func NewRedisInvalidator(addr, password, prefix string) *RedisInvalidator {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	return &RedisInvalidator{client: client, prefix: prefix}
}

// NewRedisInvalidatorFromClient wraps an existing client
func NewRedisInvalidatorFromClient(client *redis.Client, prefix string) *RedisInvalidator {
	return &RedisInvalidator{client: client, prefix: prefix}
}

// Invalidate implements Invalidator
func (r *RedisInvalidator) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	prefixed := util.Map(keys, func(k string) string { return r.prefix + ":" + k })
	if err := r.client.Del(ctx, prefixed...).Err(); err != nil {
		return err
	}

	logger.For(ctx).Debugf("invalidated %d redis cache key(s)", len(prefixed))
	return nil
}

// Close releases the underlying client
func (r *RedisInvalidator) Close() error {
	return r.client.Close()
}
