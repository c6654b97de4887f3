package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// rateLimitScript is a Lua script for sliding window rate limiting
var rateLimitScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

local windowStart = now - window

redis.call('ZREMRANGEBYSCORE', key, '-inf', windowStart)

local count = redis.call('ZCARD', key)

if count >= limit then
    local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
    local resetAt = 0
    if #oldest >= 2 then
        resetAt = tonumber(oldest[2]) + window
    else
        resetAt = now + window
    end
    return {0, resetAt}
end

redis.call('ZADD', key, now, now .. '-' .. math.random())
redis.call('EXPIRE', key, window + 10)

local resetAt = now + window
return {1, resetAt}
`)

// RateLimiter answers whether a keyed request is within its limit.
type RateLimiter interface {
	CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, resetAt time.Time)
}

// NewRateLimiter selects the limiter backend: redis-backed sliding window
// when a client is available, a per-process window otherwise.
func NewRateLimiter(client *redis.Client) RateLimiter {
	if client != nil {
		return &redisRateLimiter{client: client}
	}
	return newMemoryRateLimiter()
}

type redisRateLimiter struct {
	client *redis.Client
}

func (rl *redisRateLimiter) CheckLimit(
	ctx context.Context,
	key string,
	limit int,
	window time.Duration,
) (allowed bool, resetAt time.Time) {
	now := time.Now().Unix()
	fullKey := fmt.Sprintf("ratelimit:%s", key)

	result, err := rateLimitScript.Run(
		ctx,
		rl.client,
		[]string{fullKey},
		now,
		int64(window.Seconds()),
		limit,
	).Int64Slice()

	if err != nil {
		log.Warn().
			Err(err).
			Str("key", key).
			Msg("rate limit check failed, denying request for safety")
		return false, time.Now().Add(window)
	}

	if len(result) != 2 {
		log.Warn().Str("key", key).Msg("unexpected rate limit result, denying request for safety")
		return false, time.Now().Add(window)
	}

	return result[0] == 1, time.Unix(result[1], 0)
}

type memoryWindow struct {
	stamps    []time.Time
	expiresAt time.Time
}

// MemoryRateLimiter keeps sliding windows per key in process memory. Idle
// keys are dropped by Purge, driven by the periodic cleanup job.
type MemoryRateLimiter struct {
	mu      sync.Mutex
	entries map[string]*memoryWindow
}

func newMemoryRateLimiter() *MemoryRateLimiter {
	return &MemoryRateLimiter{entries: make(map[string]*memoryWindow)}
}

func (rl *MemoryRateLimiter) CheckLimit(
	_ context.Context,
	key string,
	limit int,
	window time.Duration,
) (allowed bool, resetAt time.Time) {
	now := time.Now()
	windowStart := now.Add(-window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry := rl.entries[key]
	if entry == nil {
		entry = &memoryWindow{}
		rl.entries[key] = entry
	}

	kept := entry.stamps[:0]
	for _, ts := range entry.stamps {
		if ts.After(windowStart) {
			kept = append(kept, ts)
		}
	}
	entry.stamps = kept
	entry.expiresAt = now.Add(window)

	if len(kept) >= limit {
		return false, kept[0].Add(window)
	}

	entry.stamps = append(kept, now)
	return true, now.Add(window)
}

// Purge drops keys whose window has fully passed since the last check.
func (rl *MemoryRateLimiter) Purge(_ context.Context) (int64, error) {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	var removed int64
	for key, entry := range rl.entries {
		if entry.expiresAt.Before(now) {
			delete(rl.entries, key)
			removed++
		}
	}
	return removed, nil
}
