package ratelimit

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// tokenBucketScript refills and takes one token atomically. Redis truncates
// Lua numbers to integers on return, so remaining tokens come back floored.
const tokenBucketScript = `
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local ttl = tonumber(ARGV[3])

local nowData = redis.call("TIME")
local now = (nowData[1] * 1000) + math.floor(nowData[2] / 1000)

local data = redis.call("HMGET", KEYS[1], "tokens", "ts")
local tokens = tonumber(data[1])
local ts = tonumber(data[2])

if tokens == nil then
  tokens = burst
  ts = now
else
  local delta = now - ts
  if delta < 0 then
    delta = 0
  end
  tokens = math.min(burst, tokens + (delta / 1000) * rate)
  ts = now
end

local allowed = 0
if tokens >= 1 then
  allowed = 1
  tokens = tokens - 1
end

redis.call("HMSET", KEYS[1], "tokens", tokens, "ts", ts)
redis.call("PEXPIRE", KEYS[1], ttl)

return {allowed, tokens, ts}
`

type TokenBucket struct {
	client redis.UniversalClient
	script *redis.Script
}

type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

func NewTokenBucket(client redis.UniversalClient) *TokenBucket {
	if client == nil {
		return nil
	}
	return &TokenBucket{
		client: client,
		script: redis.NewScript(tokenBucketScript),
	}
}

// Allow takes one token from the bucket at key. rate is tokens per second.
func (t *TokenBucket) Allow(ctx context.Context, key string, rate float64, burst int) (Result, error) {
	if t == nil || t.client == nil {
		return Result{}, errors.New("rate limiter not configured")
	}
	if err := checkArgs(key, rate, burst); err != nil {
		return Result{}, err
	}

	ttl := bucketTTL(rate, burst)
	res, err := t.script.Run(ctx, t.client, []string{key}, rate, burst, ttl.Milliseconds()).Slice()
	if err != nil {
		return Result{}, err
	}
	if len(res) < 3 {
		return Result{}, errors.New("invalid rate limit script response")
	}

	allowed := toInt(res[0]) == 1
	remaining := toInt(res[1])
	result := Result{
		Allowed:   allowed,
		Limit:     burst,
		Remaining: int(remaining),
	}
	if !allowed {
		result.RetryAfter = retryAfter(float64(remaining), rate)
	}
	return result, nil
}

func checkArgs(key string, rate float64, burst int) error {
	if key == "" {
		return errors.New("rate limiter key is empty")
	}
	if rate <= 0 {
		return errors.New("rate limiter rate must be positive")
	}
	if burst <= 0 {
		return errors.New("rate limiter burst must be positive")
	}
	return nil
}

// bucketTTL keeps an idle bucket around for twice its full refill time.
func bucketTTL(rate float64, burst int) time.Duration {
	seconds := math.Ceil((float64(burst) / rate) * 2)
	if seconds < 1 {
		seconds = 1
	}
	return time.Duration(seconds) * time.Second
}

func retryAfter(tokens float64, rate float64) time.Duration {
	needed := 1 - tokens
	if needed <= 0 {
		return 0
	}
	return time.Duration(needed / rate * float64(time.Second))
}

func toInt(v interface{}) int64 {
	switch val := v.(type) {
	case int64:
		return val
	case int:
		return int64(val)
	case float64:
		return int64(val)
	case string:
		parsed, _ := strconv.ParseFloat(val, 64)
		return int64(parsed)
	default:
		return 0
	}
}
