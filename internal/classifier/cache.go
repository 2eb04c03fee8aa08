package classifier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/domain"
	"github.com/redis/go-redis/v9"
)

// DefaultCacheTTL is how long an LLM classification is reused for identical text.
const DefaultCacheTTL = 24 * time.Hour

const cacheKeyPrefix = "complaints:classification:"

// Cache stores LLM classifications keyed by complaint text.
type Cache interface {
	Get(ctx context.Context, text string) (domain.Classification, bool, error)
	Set(ctx context.Context, text string, c domain.Classification) error
}

// RedisCache is a Cache backed by Redis string keys with a TTL.
type RedisCache struct {
	client redis.UniversalClient
	model  string
	ttl    time.Duration
}

// NewRedisCache creates a cache for replies from model. An empty model uses
// DefaultModel and a non-positive ttl uses DefaultCacheTTL.
func NewRedisCache(client redis.UniversalClient, model string, ttl time.Duration) *RedisCache {
	if model == "" {
		model = DefaultModel
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{client: client, model: model, ttl: ttl}
}

// CacheKey returns the Redis key for text classified by model with the
// current PromptVersion.
func CacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + text))
	return cacheKeyPrefix + PromptVersion + ":" + hex.EncodeToString(sum[:])
}

// Get returns the cached classification for text, if any.
func (c *RedisCache) Get(ctx context.Context, text string) (domain.Classification, bool, error) {
	raw, err := c.client.Get(ctx, CacheKey(c.model, text)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Classification{}, false, nil
	}
	if err != nil {
		return domain.Classification{}, false, fmt.Errorf("redis get: %w", err)
	}

	var cl domain.Classification
	if err = json.Unmarshal(raw, &cl); err != nil {
		return domain.Classification{}, false, fmt.Errorf("decode cached classification: %w", err)
	}
	return cl, true, nil
}

// Set stores cl for text until the TTL expires.
func (c *RedisCache) Set(ctx context.Context, text string, cl domain.Classification) error {
	raw, err := json.Marshal(cl)
	if err != nil {
		return fmt.Errorf("encode classification: %w", err)
	}
	if err = c.client.Set(ctx, CacheKey(c.model, text), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
