package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

// rateLimitPrefix is the Redis key prefix for per-client request counters.
const rateLimitPrefix = "ratelimit:ip:"

// RateLimitResult contains the result of a rate limit check.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// fixedWindowScript implements a fixed-window counter atomically:
// the first request in a window creates the counter with the window TTL,
// later requests increment it, and the remaining TTL doubles as the
// retry-after hint once the cap is reached.
var fixedWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local limit = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])

	local count = redis.call('INCR', key)
	if count == 1 then
		redis.call('EXPIRE', key, window)
	end

	local ttl = redis.call('TTL', key)
	if ttl < 0 then
		redis.call('EXPIRE', key, window)
		ttl = window
	end

	local allowed = 0
	if count <= limit then
		allowed = 1
	end

	return {allowed, count, ttl}
`)

// CheckRateLimit counts a request from the given client address against
// a fixed window of `window` duration capped at `limit` requests.
// Counters are best-effort and non-persistent: they live only as long as
// the window TTL in Redis. On Redis errors the check fails open.
func (c *Cache) CheckRateLimit(ctx context.Context, clientAddr string, limit int, window time.Duration) (*RateLimitResult, error) {
	key := rateLimitPrefix + hashAddr(clientAddr)

	result, err := fixedWindowScript.Run(ctx, c.client,
		[]string{key},
		limit, int(window.Seconds()),
	).Int64Slice()
	if err != nil {
		// Fail open - allow the request rather than blocking all traffic
		// on a cache outage.
		return &RateLimitResult{
			Allowed:   true,
			Remaining: int64(limit),
			ResetAt:   time.Now().Add(window),
		}, err
	}

	allowed := result[0] == 1
	count := result[1]
	ttl := time.Duration(result[2]) * time.Second

	remaining := int64(limit) - count
	if remaining < 0 {
		remaining = 0
	}

	res := &RateLimitResult{
		Allowed:   allowed,
		Remaining: remaining,
		ResetAt:   time.Now().Add(ttl),
	}
	if !allowed {
		res.RetryAfter = ttl
	}
	return res, nil
}

// hashAddr creates a truncated SHA256 hash of a client address.
// Raw addresses never become Redis keys.
func hashAddr(addr string) string {
	hash := sha256.Sum256([]byte(addr))
	return hex.EncodeToString(hash[:8])
}
