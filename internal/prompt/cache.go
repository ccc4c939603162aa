package prompt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"voc-insights-go/internal/types"
)

// Cache stores resolved templates keyed by identifier, version and variant.
// Resolved templates are immutable per key, so entries never need
// invalidation beyond an optional TTL.
type Cache interface {
	Get(ctx context.Context, key string) (types.PromptTemplate, bool, error)
	Set(ctx context.Context, key string, tmpl types.PromptTemplate) error
}

// MemoryCache is a process-local Cache.
type MemoryCache struct {
	entries sync.Map
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

func (c *MemoryCache) Get(_ context.Context, key string) (types.PromptTemplate, bool, error) {
	v, ok := c.entries.Load(key)
	if !ok {
		return types.PromptTemplate{}, false, nil
	}
	return v.(types.PromptTemplate), true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, tmpl types.PromptTemplate) error {
	c.entries.Store(key, tmpl)
	return nil
}

// RedisCache shares resolved templates between concurrent runs.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisCache creates a Redis-backed cache. A zero ttl keeps entries
// until evicted.
func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (types.PromptTemplate, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return types.PromptTemplate{}, false, nil
	}
	if err != nil {
		return types.PromptTemplate{}, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	var tmpl types.PromptTemplate
	if err := json.Unmarshal(data, &tmpl); err != nil {
		return types.PromptTemplate{}, false, fmt.Errorf("decode cached prompt %s: %w", key, err)
	}
	return tmpl, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, tmpl types.PromptTemplate) error {
	data, err := json.Marshal(tmpl)
	if err != nil {
		return fmt.Errorf("encode prompt %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
