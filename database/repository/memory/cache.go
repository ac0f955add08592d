package memoryRepo

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"cityportal/utils"
)

// TokenCache is an in-memory utils.TokenCache.
type TokenCache struct {
	mu     sync.Mutex
	hashes map[string]string
}

func NewTokenCache() *TokenCache {
	return &TokenCache{hashes: make(map[string]string)}
}

func (c *TokenCache) key(userID, deviceID string) string { return userID + ":" + deviceID }

func (c *TokenCache) Get(ctx context.Context, userID, deviceID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.hashes[c.key(userID, deviceID)]
	if !ok {
		return "", utils.ErrCacheMiss
	}
	return h, nil
}

func (c *TokenCache) Set(ctx context.Context, userID, deviceID, tokenHash string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hashes[c.key(userID, deviceID)] = tokenHash
	return nil
}

func (c *TokenCache) Delete(ctx context.Context, userID string, deviceIDs ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range deviceIDs {
		delete(c.hashes, c.key(userID, d))
	}
	return nil
}

// Len returns the number of cached hashes.
func (c *TokenCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.hashes)
}

// JSONCache is an in-memory utils.JSONCache. TTLs are ignored.
type JSONCache struct {
	mu     sync.Mutex
	values map[string][]byte
	// Hits counts successful Gets.
	Hits int
}

func NewJSONCache() *JSONCache {
	return &JSONCache{values: make(map[string][]byte)}
}

func (c *JSONCache) Get(ctx context.Context, key string, dst interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	if !ok {
		return utils.ErrCacheMiss
	}
	c.Hits++
	return json.Unmarshal(v, dst)
}

func (c *JSONCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = data
	return nil
}

func (c *JSONCache) DeletePrefix(ctx context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.values {
		if strings.HasPrefix(k, prefix) {
			delete(c.values, k)
		}
	}
	return nil
}

// Keys returns the number of cached keys.
func (c *JSONCache) Keys() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.values)
}
