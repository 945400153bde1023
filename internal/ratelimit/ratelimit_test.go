package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestTokenBucketRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	start := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	mr.SetTime(start)

	bucket := NewTokenBucket(client)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := bucket.Allow(ctx, "k", 1, 2)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d", i)
	}

	res, err := bucket.Allow(ctx, "k", 1, 2)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 2, res.Limit)
	assert.Equal(t, time.Second, res.RetryAfter)

	other, err := bucket.Allow(ctx, "other", 1, 2)
	require.NoError(t, err)
	assert.True(t, other.Allowed)

	mr.SetTime(start.Add(1500 * time.Millisecond))
	res, err = bucket.Allow(ctx, "k", 1, 2)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	assert.True(t, mr.Exists("k"))
	assert.Positive(t, mr.TTL("k"))
}

func TestTokenBucketRejectsBadArguments(t *testing.T) {
	mr := miniredis.RunT(t)
	bucket := NewTokenBucket(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	_, err := bucket.Allow(context.Background(), "", 1, 1)
	assert.Error(t, err)
	_, err = bucket.Allow(context.Background(), "k", 0, 1)
	assert.Error(t, err)
	_, err = bucket.Allow(context.Background(), "k", 1, 0)
	assert.Error(t, err)

	assert.Nil(t, NewTokenBucket(nil))
}

func TestLocalBuckets(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	buckets := NewLocalBuckets()
	buckets.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := buckets.Allow(ctx, "ip", 1, 2)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}
	res, err := buckets.Allow(ctx, "ip", 1, 2)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, time.Second, res.RetryAfter)

	now = now.Add(time.Second)
	res, err = buckets.Allow(ctx, "ip", 1, 2)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestLocalBucketsEvictIdleKeys(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	buckets := NewLocalBuckets()
	buckets.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := buckets.Allow(ctx, "a", 1, 1)
	require.NoError(t, err)
	now = now.Add(buckets.maxIdle + time.Minute)
	_, err = buckets.Allow(ctx, "b", 1, 1)
	require.NoError(t, err)

	assert.NotContains(t, buckets.buckets, "a")
	assert.Contains(t, buckets.buckets, "b")
}

type failingBackend struct{}

func (failingBackend) Allow(context.Context, string, float64, int) (Result, error) {
	return Result{}, errors.New("connection refused")
}

func TestIntakeLimiter(t *testing.T) {
	log := zaptest.NewLogger(t)
	ctx := context.Background()

	disabled := NewIntakeLimiterWithBackend(nil, log, 0, 0)
	assert.False(t, disabled.Enabled())
	assert.True(t, disabled.Allow(ctx, "10.0.0.1").Allowed)

	failOpen := NewIntakeLimiterWithBackend(failingBackend{}, log, 60, 1)
	assert.True(t, failOpen.Allow(ctx, "10.0.0.1").Allowed)

	limiter := NewIntakeLimiterWithBackend(NewLocalBuckets(), log, 1, 1)
	assert.True(t, limiter.Allow(ctx, "10.0.0.1").Allowed)
	assert.False(t, limiter.Allow(ctx, "10.0.0.1").Allowed)
	assert.True(t, limiter.Allow(ctx, "10.0.0.2").Allowed)
}
