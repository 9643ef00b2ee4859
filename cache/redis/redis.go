package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ragforge/llminvoke/cache"
)

// RedisCache implements cache.Cache on a Redis instance, for pipelines that
// share one invocation cache across processes.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ cache.Cache = (*RedisCache)(nil)

// Options configuration for the Redis connection
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // Key prefix, default "llminvoke:"
	TTL      time.Duration // Expiration for entries, default 0 (no expiration)
}

// New creates a RedisCache
func New(opts Options) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "llminvoke:"
	}

	return &RedisCache{
		client: client,
		prefix: prefix,
		ttl:    opts.TTL,
	}
}

func (c *RedisCache) entryKey(key string) string {
	return c.prefix + key
}

// Has reports whether key is present
func (c *RedisCache) Has(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, c.entryKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("check cache entry in redis: %w", err)
	}
	return n > 0, nil
}

// Get returns the stored value
func (c *RedisCache) Get(ctx context.Context, key string) (any, bool, error) {
	data, err := c.client.Get(ctx, c.entryKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load cache entry from redis: %w", err)
	}

	var entry cache.Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return entry.Result, true, nil
}

// Set stores value under key
func (c *RedisCache) Set(ctx context.Context, key string, value any, debug map[string]any) error {
	data, err := json.Marshal(cache.Entry{Result: value, Debug: debug})
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}
	if err := c.client.Set(ctx, c.entryKey(key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("save cache entry to redis: %w", err)
	}
	return nil
}

// Close releases the underlying client
func (c *RedisCache) Close() error {
	return c.client.Close()
}
