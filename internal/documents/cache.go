package documents

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const analysisKeyPrefix = "rdoc:analysis:" // rdoc:analysis:{sha256}

// Cache stores analyses by upload digest.
type Cache interface {
	Get(ctx context.Context, digest string) (*Analysis, bool, error)
	Set(ctx context.Context, digest string, a *Analysis) error
}

// Digest is the cache key for an upload.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// RedisCache keeps analyses in redis with a fixed TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) key(digest string) string {
	return analysisKeyPrefix + digest
}

func (c *RedisCache) Get(ctx context.Context, digest string) (*Analysis, bool, error) {
	raw, err := c.client.Get(ctx, c.key(digest)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read analysis cache: %w", err)
	}

	var a Analysis
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached analysis: %w", err)
	}
	return &a, true, nil
}

func (c *RedisCache) Set(ctx context.Context, digest string, a *Analysis) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}
	if err := c.client.Set(ctx, c.key(digest), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write analysis cache: %w", err)
	}
	return nil
}
