package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when no cached page exists for a query.
var ErrMiss = errors.New("cache miss")

// PageCache stores fetched search-results pages keyed by query so repeated
// searches within the TTL do not hit the storefront again.
type PageCache interface {
	Get(ctx context.Context, query string) (string, error)
	Set(ctx context.Context, query, html string) error
}

// RedisClient is the subset of redis.Client the cache needs (for testing).
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type RedisPageCache struct {
	client RedisClient
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisPageCache(client RedisClient, ttl time.Duration, logger *slog.Logger) *RedisPageCache {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &RedisPageCache{
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "page_cache"),
	}
}

func (c *RedisPageCache) Get(ctx context.Context, query string) (string, error) {
	html, err := c.client.Get(ctx, cacheKey(query)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	if err != nil {
		return "", fmt.Errorf("failed to read cached page: %w", err)
	}
	return html, nil
}

func (c *RedisPageCache) Set(ctx context.Context, query, html string) error {
	if err := c.client.Set(ctx, cacheKey(query), html, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache page: %w", err)
	}
	c.logger.Debug("cached search page", "query", query, "ttl", c.ttl)
	return nil
}

func cacheKey(query string) string {
	sum := sha256.Sum256([]byte(query))
	return "search:page:" + hex.EncodeToString(sum[:8])
}
