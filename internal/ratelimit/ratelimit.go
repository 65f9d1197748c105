// Package ratelimit implements a fixed-window counter in redis. It is used
// to bound message sends per user.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter decides whether a request fits inside its rate window.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Reset(ctx context.Context, key string) error
}

// RedisLimiter counts requests per key with INCR + EXPIRE. With fallback
// enabled it fails open: if redis is unreachable, requests are allowed and
// the failure is logged.
type RedisLimiter struct {
	rdb      *redis.Client
	logger   *zap.Logger
	fallback bool
}

func NewRedisLimiter(rdb *redis.Client, logger *zap.Logger, fallback bool) *RedisLimiter {
	return &RedisLimiter{
		rdb:      rdb,
		logger:   logger,
		fallback: fallback,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	redisKey := fmt.Sprintf("ratelimit:%s", key)

	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		if l.fallback {
			l.logger.Warn("rate limiter unavailable, failing open",
				zap.String("key", key), zap.Error(err))
			return true, nil
		}
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	return incr.Val() <= int64(limit), nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.rdb.Del(ctx, fmt.Sprintf("ratelimit:%s", key)).Err()
}
