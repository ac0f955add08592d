package utils

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	m := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return m, client
}

type cachedItem struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestRedisJSONCache_GetSet(t *testing.T) {
	m, client := newTestRedis(t)
	cache := NewRedisJSONCache(client)
	ctx := context.Background()

	var got cachedItem
	assert.ErrorIs(t, cache.Get(ctx, "catalog:list", &got), ErrCacheMiss)

	require.NoError(t, cache.Set(ctx, "catalog:list", cachedItem{Name: "permits", Count: 3}, time.Minute))
	require.NoError(t, cache.Get(ctx, "catalog:list", &got))
	assert.Equal(t, cachedItem{Name: "permits", Count: 3}, got)
	assert.Equal(t, time.Minute, m.TTL("catalog:list"))

	m.FastForward(2 * time.Minute)
	assert.ErrorIs(t, cache.Get(ctx, "catalog:list", &got), ErrCacheMiss)

	require.NoError(t, m.Set("catalog:broken", "{not json"))
	assert.Error(t, cache.Get(ctx, "catalog:broken", &got))
}

func TestRedisJSONCache_DeletePrefix(t *testing.T) {
	m, client := newTestRedis(t)
	cache := NewRedisJSONCache(client)
	ctx := context.Background()

	for i := 0; i < 250; i++ {
		require.NoError(t, cache.Set(ctx, fmt.Sprintf("news:page:%d", i), i, time.Minute))
	}
	require.NoError(t, cache.Set(ctx, "catalog:list", 1, time.Minute))

	require.NoError(t, cache.DeletePrefix(ctx, "news:"))
	assert.Equal(t, []string{"catalog:list"}, m.Keys())

	require.NoError(t, cache.DeletePrefix(ctx, "missing:"))
}

func TestCached_UsesRedis(t *testing.T) {
	_, client := newTestRedis(t)
	cache := NewRedisJSONCache(client)
	ctx := context.Background()

	loads := 0
	load := func() ([]cachedItem, error) {
		loads++
		return []cachedItem{{Name: "a", Count: loads}}, nil
	}

	first, err := Cached(ctx, cache, "services:active", time.Minute, load)
	require.NoError(t, err)
	second, err := Cached(ctx, cache, "services:active", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 1, loads)
	assert.Equal(t, first, second)

	Invalidate(ctx, cache, "services:")
	third, err := Cached(ctx, cache, "services:active", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 2, loads)
	assert.Equal(t, 2, third[0].Count)
}

func TestCached_RedisDownStillLoads(t *testing.T) {
	m, client := newTestRedis(t)
	cache := NewRedisJSONCache(client)
	m.Close()

	got, err := Cached(context.Background(), cache, "k", time.Minute, func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestRedisTokenCache(t *testing.T) {
	m, client := newTestRedis(t)
	tokens := NewRedisTokenCache(client)
	ctx := context.Background()

	_, err := tokens.Get(ctx, "u1", "phone")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, tokens.Set(ctx, "u1", "phone", "hash-1"))
	require.NoError(t, tokens.Set(ctx, "u1", "laptop", "hash-2"))
	assert.True(t, m.Exists("auth:u1:phone"))

	m.FastForward(AuthCacheTTL / 2)
	hash, err := tokens.Get(ctx, "u1", "phone")
	require.NoError(t, err)
	assert.Equal(t, "hash-1", hash)
	assert.Equal(t, AuthCacheTTL, m.TTL("auth:u1:phone"), "reads refresh the TTL")

	require.NoError(t, tokens.Delete(ctx, "u1", "phone", "laptop"))
	assert.False(t, m.Exists("auth:u1:phone"))
	assert.False(t, m.Exists("auth:u1:laptop"))
	require.NoError(t, tokens.Delete(ctx, "u1"))
}
