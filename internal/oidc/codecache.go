package oidc

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/childbooklet/booklet-server-go/internal/redis"
)

// CodeCache remembers the result of consuming an authorization code so a
// double-submitted callback returns the prior result instead of
// re-submitting a single-use code upstream.
type CodeCache interface {
	Get(ctx context.Context, code string) (*Result, bool)
	Put(ctx context.Context, code string, result *Result)
}

type memoryCodeEntry struct {
	result    *Result
	expiresAt time.Time
}

// MemoryCodeCache is the single-process fallback; entries are swept by
// the cleanup job.
type MemoryCodeCache struct {
	mu      sync.RWMutex
	entries map[string]memoryCodeEntry
	ttl     time.Duration
}

func NewMemoryCodeCache(ttl time.Duration) *MemoryCodeCache {
	return &MemoryCodeCache{
		entries: make(map[string]memoryCodeEntry),
		ttl:     ttl,
	}
}

func (c *MemoryCodeCache) Get(_ context.Context, code string) (*Result, bool) {
	c.mu.RLock()
	entry, ok := c.entries[code]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.result, true
}

func (c *MemoryCodeCache) Put(_ context.Context, code string, result *Result) {
	c.mu.Lock()
	c.entries[code] = memoryCodeEntry{result: result, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// Purge removes expired entries; driven by the cleanup job.
func (c *MemoryCodeCache) Purge(_ context.Context) (int64, error) {
	now := time.Now()
	var removed int64

	c.mu.Lock()
	for code, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, code)
			removed++
		}
	}
	c.mu.Unlock()

	return removed, nil
}

// RedisCodeCache shares consumed codes across processes. Redis failures
// degrade to cache misses; the worst case is an upstream rejection of the
// replayed code, which the exchange already handles.
type RedisCodeCache struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewRedisCodeCache(client *goredis.Client, ttl time.Duration) *RedisCodeCache {
	return &RedisCodeCache{client: client, ttl: ttl}
}

func (c *RedisCodeCache) Get(ctx context.Context, code string) (*Result, bool) {
	data, err := c.client.Get(ctx, redis.ConsumedCodeKey(code)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			log.Warn().Err(err).Msg("code cache read failed, treating as miss")
		}
		return nil, false
	}

	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		log.Warn().Err(err).Msg("code cache entry corrupt, treating as miss")
		return nil, false
	}
	return &result, true
}

func (c *RedisCodeCache) Put(ctx context.Context, code string, result *Result) {
	data, err := json.Marshal(result)
	if err != nil {
		log.Warn().Err(err).Msg("code cache marshal failed")
		return
	}
	if err := c.client.Set(ctx, redis.ConsumedCodeKey(code), data, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Msg("code cache write failed")
	}
}
