package ratelimit

import (
	"context"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/permitdesk/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const keyIntakeIP = "permitdesk:intake:ip:"

type Backend interface {
	Allow(ctx context.Context, key string, perSecond float64, burst int) (Result, error)
}

// IntakeLimiter throttles public application submissions per client IP.
type IntakeLimiter struct {
	backend   Backend
	log       *zap.Logger
	perSecond float64
	burst     int
}

type IntakeParams struct {
	fx.In

	Lifecycle fx.Lifecycle `optional:"true"`
	Config    config.Config
	Log       *zap.Logger
}

func NewIntakeLimiter(p IntakeParams) *IntakeLimiter {
	log := p.Log.Named("ratelimit.intake")
	cfg := p.Config.Intake
	if cfg.RatePerMinute <= 0 || cfg.Burst <= 0 {
		log.Info("intake rate limit disabled")
		return &IntakeLimiter{log: log}
	}

	var backend Backend
	if addr := strings.TrimSpace(p.Config.Redis.Addr); addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: strings.TrimSpace(p.Config.Redis.Password),
			DB:       p.Config.Redis.DB,
		})
		if p.Lifecycle != nil {
			p.Lifecycle.Append(fx.Hook{
				OnStop: func(context.Context) error { return client.Close() },
			})
		}
		backend = NewTokenBucket(client)
		log.Info("intake rate limit uses redis", zap.String("addr", addr))
	} else {
		backend = NewLocalBuckets()
		log.Info("intake rate limit uses in-process buckets")
	}

	return NewIntakeLimiterWithBackend(backend, log, cfg.RatePerMinute, cfg.Burst)
}

func NewIntakeLimiterWithBackend(backend Backend, log *zap.Logger, perMinute float64, burst int) *IntakeLimiter {
	return &IntakeLimiter{
		backend:   backend,
		log:       log,
		perSecond: perMinute / 60,
		burst:     burst,
	}
}

func (l *IntakeLimiter) Enabled() bool {
	return l != nil && l.backend != nil
}

// Allow fails open when the backend errors.
func (l *IntakeLimiter) Allow(ctx context.Context, clientIP string) Result {
	if !l.Enabled() {
		return Result{Allowed: true}
	}
	clientIP = strings.TrimSpace(clientIP)
	if clientIP == "" {
		clientIP = "unknown"
	}

	result, err := l.backend.Allow(ctx, keyIntakeIP+clientIP, l.perSecond, l.burst)
	if err != nil {
		l.log.Warn("rate limit check failed", zap.Error(err))
		return Result{Allowed: true, Limit: l.burst}
	}
	return result
}
