package planet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"planetinfo-server/internal/shared/redis"
)

// Cache stores computed records. Get returns ErrCacheMiss when key is absent.
type Cache interface {
	Get(ctx context.Context, key string) (*Record, error)
	Set(ctx context.Context, rec *Record) error
}

// NewCache returns a Redis backed cache, or an in-memory one when client is nil.
func NewCache(client *redis.Client, ttl time.Duration, maxEntries int) Cache {
	if client == nil {
		return NewMemoryCache(maxEntries)
	}
	return NewRedisCache(client, ttl)
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func redisKey(key string) string {
	return "planet:" + key
}

func (c *RedisCache) Get(ctx context.Context, key string) (*Record, error) {
	data, err := c.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read planet cache: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode cached planet: %w", err)
	}
	return &rec, nil
}

func (c *RedisCache) Set(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode planet: %w", err)
	}
	if err := c.client.Set(ctx, redisKey(rec.MapKey), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write planet cache: %w", err)
	}
	return nil
}

// MemoryCache is a bounded map; when full it is emptied before the next insert.
type MemoryCache struct {
	mu         sync.RWMutex
	records    map[string]Record
	maxEntries int
}

func NewMemoryCache(maxEntries int) *MemoryCache {
	return &MemoryCache{
		records:    make(map[string]Record),
		maxEntries: maxEntries,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rec, ok := c.records[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return &rec, nil
}

func (c *MemoryCache) Set(_ context.Context, rec *Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxEntries > 0 && len(c.records) >= c.maxEntries {
		clear(c.records)
	}
	c.records[rec.MapKey] = *rec
	return nil
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}
