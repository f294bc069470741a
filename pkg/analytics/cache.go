package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/go-redis/cache/v8"
	"github.com/go-redis/redis/v8"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"time"
)

// CacheInterface stores computed analytics. Entries are disposable, a miss is never an error.
type CacheInterface interface {
	Get(ctx context.Context, key string, value interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
}

// CacheKey builds the key of a result: kind, user, parameters and the activity revision the result was
// computed from
func CacheKey(kind string, userID string, params string, revision int64) string {
	return fmt.Sprintf("analytics:%s:%s:%s:%d", kind, userID, params, revision)
}

type memoryCacheEntry struct {
	payload []byte
	expires time.Time
}

// MemoryCache is a size bounded LRU cache for single instance deployments
type MemoryCache struct {
	cache *lru.Cache
	ttl   time.Duration
}

// NewMemoryCache builds a new MemoryCache holding at most size entries for ttl
func NewMemoryCache(size int, ttl time.Duration) (*MemoryCache, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}

	return &MemoryCache{cache: c, ttl: ttl}, nil
}

// Get decodes the entry of key into value
func (c *MemoryCache) Get(_ context.Context, key string, value interface{}) (bool, error) {
	result, ok := c.cache.Get(key)
	if !ok {
		return false, nil
	}

	entry, ok := result.(*memoryCacheEntry)
	if !ok || time.Now().After(entry.expires) {
		c.cache.Remove(key)
		return false, nil
	}

	err := json.Unmarshal(entry.payload, value)
	if err != nil {
		return false, errors.Wrap(err, "could not decode cached analytics")
	}

	return true, nil
}

// Set stores a copy of value
func (c *MemoryCache) Set(_ context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "could not encode analytics for caching")
	}

	c.cache.Add(key, &memoryCacheEntry{payload: payload, expires: time.Now().Add(c.ttl)})
	return nil
}

// RedisCache shares computed analytics between instances
type RedisCache struct {
	Cache *cache.Cache
	ttl   time.Duration
}

// NewRedisCache builds a new RedisCache
func NewRedisCache(redisClient *redis.Client, ttl time.Duration) *RedisCache {
	redisCache := cache.New(&cache.Options{
		Redis: redisClient,
	})

	return &RedisCache{Cache: redisCache, ttl: ttl}
}

// Get decodes the entry of key into value
func (c *RedisCache) Get(ctx context.Context, key string, value interface{}) (bool, error) {
	err := c.Cache.Get(ctx, key, value)
	if errors.Is(err, cache.ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

// Set stores value for the configured ttl
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}) error {
	return c.Cache.Set(&cache.Item{
		Ctx:   ctx,
		Key:   key,
		Value: value,
		TTL:   c.ttl,
	})
}
