package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key prefixes for the two bucket families. Client IPs are hashed so raw
// addresses never sit in Redis.
const (
	ipBucketPrefix   = "thingful:ratelimit:ip:"
	userBucketPrefix = "thingful:ratelimit:user:"
)

// RateLimitResult contains the result of a rate limit check.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// bucket describes one token bucket. Rate is in tokens per second.
type bucket struct {
	key   string
	rate  float64
	burst int
}

// idle is how long an untouched bucket lives: long enough to refill
// completely, plus a second of slack.
func (b bucket) idle() time.Duration {
	return time.Duration(float64(b.burst)/b.rate*float64(time.Second)) + time.Second
}

// takeScript refills the bucket for the elapsed milliseconds, then tries
// to take one token. It returns {allowed, tokens left, wait ms}.
var takeScript = redis.NewScript(`
local state = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local rate_ms = tonumber(ARGV[1]) / 1000
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local tokens = tonumber(state[1])
local ts = tonumber(state[2])
if tokens == nil or ts == nil then
	tokens = burst
	ts = now
end
tokens = math.min(burst, tokens + math.max(0, now - ts) * rate_ms)

local ok = 0
local wait = 0
if tokens >= 1 then
	ok = 1
	tokens = tokens - 1
else
	wait = math.ceil((1 - tokens) / rate_ms)
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'ts', now)
redis.call('PEXPIRE', KEYS[1], ARGV[4])
return {ok, math.floor(tokens), wait}
`)

// CheckIPRateLimit takes one token from the bucket of a client IP.
func (c *Cache) CheckIPRateLimit(ctx context.Context, ip string, ratePerSecond, burst int) (*RateLimitResult, error) {
	return c.take(ctx, bucket{
		key:   ipBucketPrefix + hashIP(ip),
		rate:  float64(ratePerSecond),
		burst: burst,
	})
}

// CheckUserRateLimit takes one token from the bucket of an authenticated
// user. A zero rate means unlimited and never touches Redis.
func (c *Cache) CheckUserRateLimit(ctx context.Context, userID string, ratePerMinute, burst int) (*RateLimitResult, error) {
	if ratePerMinute == 0 {
		return &RateLimitResult{Allowed: true, Remaining: int64(burst), ResetAt: time.Now().Add(time.Minute)}, nil
	}
	return c.take(ctx, bucket{
		key:   userBucketPrefix + userID,
		rate:  float64(ratePerMinute) / 60,
		burst: burst,
	})
}

func (c *Cache) take(ctx context.Context, b bucket) (*RateLimitResult, error) {
	if b.rate <= 0 || b.burst <= 0 {
		return nil, fmt.Errorf("invalid rate limit for %s: rate=%v burst=%d", b.key, b.rate, b.burst)
	}

	now := time.Now()
	out, err := takeScript.Run(ctx, c.client, []string{b.key},
		b.rate, b.burst, now.UnixMilli(), b.idle().Milliseconds(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("take token from %s: %w", b.key, err)
	}
	if len(out) != 3 {
		return nil, fmt.Errorf("take token from %s: unexpected reply %v", b.key, out)
	}

	return &RateLimitResult{
		Allowed:    out[0] == 1,
		Remaining:  out[1],
		ResetAt:    now.Add(refillTime(b.rate)),
		RetryAfter: roundUpSecond(time.Duration(out[2]) * time.Millisecond),
	}, nil
}

// refillTime is how long one token takes to come back.
func refillTime(rate float64) time.Duration {
	return time.Duration(float64(time.Second) / rate)
}

// roundUpSecond rounds d up to whole seconds, the unit of Retry-After.
func roundUpSecond(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return time.Duration(math.Ceil(d.Seconds())) * time.Second
}

// hashIP returns a short, stable key fragment for ip.
func hashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:8])
}
