package cacheinfra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/DmitryDemura/taskforge/cache"
)

// scanBatchSize is the COUNT hint passed to SCAN when sweeping keys.
const scanBatchSize = 100

// RedisStore adapts a go-redis client to the cache.Store contract.
// Connection-level failures are wrapped in cache.ErrUnavailable so callers
// can treat them as "cache unavailable" instead of fatal.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an already-connected client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get returns the value under key. A redis.Nil reply is a logical miss, not
// an error.
func (r *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable(err)
	}
	return value, true, nil
}

// Set stores value under key without expiry.
func (r *RedisStore) Set(ctx context.Context, key, value string) error {
	return unavailable(r.client.Set(ctx, key, value, 0).Err())
}

// SetTTL stores value under key with the given expiry.
func (r *RedisStore) SetTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	return unavailable(r.client.Set(ctx, key, value, ttl).Err())
}

// Delete removes the given keys and returns how many existed.
func (r *RedisStore) Delete(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	removed, err := r.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, unavailable(err)
	}
	return removed, nil
}

// Exists reports whether key is present.
func (r *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, unavailable(err)
	}
	return n > 0, nil
}

// ScanKeys collects all keys matching the glob pattern using SCAN, so large
// keyspaces are walked incrementally instead of blocking the server.
func (r *RedisStore) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, pattern, scanBatchSize).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, unavailable(err)
	}
	return keys, nil
}

// Ping checks backend liveness.
func (r *RedisStore) Ping(ctx context.Context) error {
	return unavailable(r.client.Ping(ctx).Err())
}

// Close shuts down the underlying connection pool.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

func unavailable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", cache.ErrUnavailable, err)
}
