package rate

import (
	"context"
	"fmt"
	"sync"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

// MultiLimiter permite usar distintos límites por regla con el mismo cliente.
type MultiLimiter interface {
	AllowWithLimits(ctx context.Context, key string, limit int, window time.Duration) (Result, error)
}

var _ MultiLimiter = (*MultiRedisLimiter)(nil)

// MultiRedisLimiter cachea un RedisLimiter por combinación limit+window.
type MultiRedisLimiter struct {
	client rdb.Cmdable
	prefix string

	mu       sync.RWMutex
	limiters map[string]*RedisLimiter
}

func NewMultiRedisLimiter(client rdb.Cmdable, prefix string) *MultiRedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	return &MultiRedisLimiter{
		client:   client,
		prefix:   prefix,
		limiters: make(map[string]*RedisLimiter),
	}
}

func (m *MultiRedisLimiter) AllowWithLimits(ctx context.Context, key string, limit int, window time.Duration) (Result, error) {
	configKey := fmt.Sprintf("%d:%s", limit, window)

	m.mu.RLock()
	limiter, ok := m.limiters[configKey]
	m.mu.RUnlock()

	if !ok {
		m.mu.Lock()
		if limiter, ok = m.limiters[configKey]; !ok {
			limiter = NewRedisLimiter(m.client, m.prefix+configKey+":", limit, window)
			m.limiters[configKey] = limiter
		}
		m.mu.Unlock()
	}
	return limiter.Allow(ctx, key)
}
