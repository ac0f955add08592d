package utils

import (
	"context"

	"github.com/go-redis/redis/v8"
)

// TokenCache keeps the hash of the active token per user device.
type TokenCache interface {
	Get(ctx context.Context, userID, deviceID string) (string, error)
	Set(ctx context.Context, userID, deviceID, tokenHash string) error
	Delete(ctx context.Context, userID string, deviceIDs ...string) error
}

type RedisTokenCache struct {
	client *redis.Client
}

func NewRedisTokenCache(client *redis.Client) TokenCache {
	return &RedisTokenCache{client: client}
}

func authKey(userID, deviceID string) string {
	return AuthCachePrefix + userID + ":" + deviceID
}

// Get returns the cached hash and refreshes its TTL. A missing key yields ErrCacheMiss.
func (t *RedisTokenCache) Get(ctx context.Context, userID, deviceID string) (string, error) {
	key := authKey(userID, deviceID)
	hash, err := t.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", err
	}
	_ = t.client.Expire(ctx, key, AuthCacheTTL).Err()
	return hash, nil
}

func (t *RedisTokenCache) Set(ctx context.Context, userID, deviceID, tokenHash string) error {
	return t.client.Set(ctx, authKey(userID, deviceID), tokenHash, AuthCacheTTL).Err()
}

func (t *RedisTokenCache) Delete(ctx context.Context, userID string, deviceIDs ...string) error {
	if len(deviceIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(deviceIDs))
	for _, d := range deviceIDs {
		keys = append(keys, authKey(userID, d))
	}
	return t.client.Del(ctx, keys...).Err()
}
