package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LocalBuckets is the single-process fallback used when no Redis is configured.
type LocalBuckets struct {
	mu      sync.Mutex
	buckets map[string]*localBucket
	now     func() time.Time
	maxIdle time.Duration
	swept   time.Time
}

type localBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewLocalBuckets() *LocalBuckets {
	return &LocalBuckets{
		buckets: make(map[string]*localBucket),
		now:     time.Now,
		maxIdle: 10 * time.Minute,
	}
}

func (l *LocalBuckets) Allow(_ context.Context, key string, perSecond float64, burst int) (Result, error) {
	if err := checkArgs(key, perSecond, burst); err != nil {
		return Result{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.evict(now)

	bucket, ok := l.buckets[key]
	if !ok {
		bucket = &localBucket{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
		l.buckets[key] = bucket
	}
	bucket.lastSeen = now

	allowed := bucket.limiter.AllowN(now, 1)
	tokens := bucket.limiter.TokensAt(now)
	result := Result{
		Allowed:   allowed,
		Limit:     burst,
		Remaining: int(tokens),
	}
	if !allowed {
		result.RetryAfter = retryAfter(tokens, perSecond)
	}
	return result, nil
}

func (l *LocalBuckets) evict(now time.Time) {
	if now.Sub(l.swept) < l.maxIdle {
		return
	}
	l.swept = now
	for key, bucket := range l.buckets {
		if now.Sub(bucket.lastSeen) > l.maxIdle {
			delete(l.buckets, key)
		}
	}
}
