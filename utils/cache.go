package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"cityportal/config"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

var (
	// CacheClient is the generic cache client.
	CacheClient *redis.Client
	// AuthCacheClient is the dedicated client for authorization caching.
	AuthCacheClient *redis.Client
)

// ErrCacheMiss is returned when a key is not cached.
var ErrCacheMiss = errors.New("cache miss")

func newRedisClient(db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
}

func mustPing(client *redis.Client, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (%s): %v", name, err)
	}
}

// InitCache initializes the generic Redis cache client.
func InitCache() {
	CacheClient = newRedisClient(config.AppConfig.RedisCacheDB)
	mustPing(CacheClient, "Cache")
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitCache()
	}
	return CacheClient
}

// InitAuthCache initializes the Redis client for authorization caching.
func InitAuthCache() {
	AuthCacheClient = newRedisClient(config.AppConfig.RedisAuthDB)
	mustPing(AuthCacheClient, "Auth Cache")
}

// GetAuthCacheClient returns the Redis client for authorization caching.
func GetAuthCacheClient() *redis.Client {
	if AuthCacheClient == nil {
		InitAuthCache()
	}
	return AuthCacheClient
}

// QueueRedisOpt returns the asynq connection options for the job queue DB.
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// JSONCache stores JSON encoded values under string keys.
type JSONCache interface {
	Get(ctx context.Context, key string, dst interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

type RedisJSONCache struct {
	client *redis.Client
}

func NewRedisJSONCache(client *redis.Client) JSONCache {
	return &RedisJSONCache{client: client}
}

// Get decodes the cached value into dst, or returns ErrCacheMiss.
func (c *RedisJSONCache) Get(ctx context.Context, key string, dst interface{}) error {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(val, dst); err != nil {
		return fmt.Errorf("failed to decode cached %s: %w", key, err)
	}
	return nil
}

func (c *RedisJSONCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

// DeletePrefix removes every key starting with prefix.
func (c *RedisJSONCache) DeletePrefix(ctx context.Context, prefix string) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Cached returns the value stored under key, or calls load and caches its result.
// A nil cache always loads. Cache failures are logged and never fail the call.
func Cached[T any](ctx context.Context, cache JSONCache, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	var out T
	if cache != nil {
		err := cache.Get(ctx, key, &out)
		if err == nil {
			return out, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			GetLogger().Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		}
	}
	out, err := load()
	if err != nil {
		return out, err
	}
	if cache != nil {
		if err := cache.Set(ctx, key, out, ttl); err != nil {
			GetLogger().Warn("Cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return out, nil
}

// Invalidate drops every key under prefix, logging failures.
func Invalidate(ctx context.Context, cache JSONCache, prefix string) {
	if cache == nil {
		return
	}
	if err := cache.DeletePrefix(ctx, prefix); err != nil {
		GetLogger().Warn("Cache invalidation failed", zap.String("prefix", prefix), zap.Error(err))
	}
}
