// Package ratelimit throttles login attempts with a fixed window counter in Redis.
package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"authgate/backend/internal/identity/service"
)

// Connect initializes a Redis client from URL or host:port input.
// Supporting both formats keeps local/dev and container config paths simple.
func Connect(redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") {
		opt, parseErr := redis.ParseURL(redisURL)
		if parseErr != nil {
			return nil, fmt.Errorf("parse redis url: %w", parseErr)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

// RedisLimiter counts attempts per (identifier, action) in a fixed window.
// The window starts at the first attempt and the key expires with it, so the
// counter resets without any sweeper.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewRedisLimiter creates a limiter allowing limit attempts per window.
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, window: window}
}

// CheckLimit increments the attempt counter and reports whether the attempt
// is still within the window's budget. When over budget, RetryAfter carries
// the key's remaining TTL.
func (l *RedisLimiter) CheckLimit(ctx context.Context, identifier, action string) (service.RateLimitResult, error) {
	key := "auth:ratelimit:" + action + ":" + identifier

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, key)
		p.ExpireNX(ctx, key, l.window)
		return nil
	})
	if err != nil {
		return service.RateLimitResult{}, fmt.Errorf("rate limit incr: %w", err)
	}

	if incr.Val() <= int64(l.limit) {
		return service.RateLimitResult{Allowed: true}, nil
	}

	retryAfter := l.window
	if ttl, ttlErr := l.client.TTL(ctx, key).Result(); ttlErr == nil && ttl > 0 {
		retryAfter = ttl
	}
	return service.RateLimitResult{Allowed: false, RetryAfter: retryAfter}, nil
}
