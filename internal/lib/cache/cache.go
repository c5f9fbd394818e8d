// Package cache stores dashboard aggregates in Redis as JSON.
//
// Keys carry a version number. Any mutation of tasks, categories or users
// bumps the version, which orphans every cached aggregate at once; orphaned
// keys expire on their own TTL. All failures are logged and swallowed so a
// Redis outage only costs latency.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	keyPrefix  = "dashboard"
	versionKey = keyPrefix + ":version"
)

type Cache struct {
	client *redis.Client
	logger *zerolog.Logger
}

// New returns a cache backed by client. A nil client yields a cache where
// every lookup misses and every write is dropped.
func New(client *redis.Client, logger *zerolog.Logger) *Cache {
	return &Cache{client: client, logger: logger}
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil
}

func (c *Cache) version(ctx context.Context) int64 {
	v, err := c.client.Get(ctx, versionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.logger.Warn().Err(err).Msg("cache version lookup failed")
	}
	return v
}

// Key builds a versioned key such as "dashboard:v3:metrics".
func (c *Cache) Key(ctx context.Context, parts ...string) string {
	var v int64
	if c.enabled() {
		v = c.version(ctx)
	}
	return fmt.Sprintf("%s:v%d:%s", keyPrefix, v, strings.Join(parts, ":"))
}

// GetJSON decodes the cached value into dest and reports whether it was found.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) bool {
	if !c.enabled() {
		return false
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache entry is corrupt")
		return false
	}
	return true
}

func (c *Cache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	if !c.enabled() {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache encode failed")
		return
	}

	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// Invalidate bumps the version so every existing key becomes unreachable.
func (c *Cache) Invalidate(ctx context.Context) {
	if !c.enabled() {
		return
	}

	if err := c.client.Incr(ctx, versionKey).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("cache invalidation failed")
	}
}
