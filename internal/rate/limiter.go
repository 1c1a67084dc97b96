// Package rate implementa rate limiting fixed-window sobre Redis.
package rate

import (
	"context"
	"fmt"
	"strings"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

type Result struct {
	Allowed    bool
	Limit      int64
	Remaining  int64
	RetryAfter time.Duration
	ResetAt    time.Time
	Hits       int64
}

// RedisLimiter: fixed window (INCR + EXPIRE en la misma transacción).
// La clave incluye el inicio de la ventana, así que cada ventana es una key distinta.
type RedisLimiter struct {
	client rdb.Cmdable
	prefix string
	max    int64
	window time.Duration
	now    func() time.Time
}

func NewRedisLimiter(client rdb.Cmdable, prefix string, max int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		max:    int64(max),
		window: window,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	now := l.now()
	winStart := now.Truncate(l.window)
	resetAt := winStart.Add(l.window)
	redisKey := fmt.Sprintf("%s%s:%d", l.prefix, strings.ReplaceAll(key, " ", "_"), winStart.Unix())

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("rate: %w", err)
	}

	hits := incr.Val()
	res := Result{
		Allowed:   hits <= l.max,
		Limit:     l.max,
		Remaining: max(l.max-hits, 0),
		ResetAt:   resetAt,
		Hits:      hits,
	}
	if !res.Allowed {
		res.RetryAfter = resetAt.Sub(now).Round(time.Second)
		if res.RetryAfter <= 0 {
			res.RetryAfter = time.Second
		}
	}
	return res, nil
}
