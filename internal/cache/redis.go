// Package cache stores query interpretations in Redis so repeated searches over an unchanged
// corpus skip the remote model.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"docvault/internal/analysis"
	"docvault/internal/config"
	"docvault/internal/model"
)

const keyPrefix = "docvault:search:"

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to Redis and verifies it with a ping.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*RedisCache, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:                  cfg.Addr,
		Password:              cfg.Password,
		DB:                    cfg.DB,
		ContextTimeoutEnabled: true,
		ReadTimeout:           2 * time.Second,
		WriteTimeout:          2 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewWithClient(client, time.Duration(cfg.TTLSec)*time.Second), nil
}

// NewWithClient wraps an existing client. A non-positive ttl means one hour.
func NewWithClient(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisCache{client: client, ttl: ttl}
}

// Get returns the cached interpretation, or ok=false on a miss.
func (c *RedisCache) Get(ctx context.Context, key string) (*analysis.Interpretation, bool, error) {
	raw, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	var in analysis.Interpretation
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, false, fmt.Errorf("cache decode: %w", err)
	}
	return &in, true, nil
}

// Set stores an interpretation. Usage is not cached.
func (c *RedisCache) Set(ctx context.Context, key string, in *analysis.Interpretation) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Key derives the cache key from the normalized query and a fingerprint of the corpus,
// so any upload, rename or delete produces a different key.
func Key(query string, corpus []model.DocumentSummary) string {
	h := sha256.New()
	h.Write([]byte(strings.ToLower(strings.Join(strings.Fields(query), " "))))
	h.Write([]byte{0})
	enc := json.NewEncoder(h)
	for _, d := range corpus {
		_ = enc.Encode(d)
	}
	return hex.EncodeToString(h.Sum(nil))
}
