package cache

import (
	"context"
	"time"

	redisrepo "go-rbacadmin/internal/repository/redis"
)

// TTLFetcher 可选接口：返回剩余 TTL，<=0 代表永久或未知
type TTLFetcher interface {
	RemainingTTL(ctx context.Context, key string) (time.Duration, bool)
}

type RedisAdapter struct{ c *redisrepo.Client }

func NewRedisAdapter(c *redisrepo.Client) *RedisAdapter { return &RedisAdapter{c: c} }

func (r *RedisAdapter) Get(ctx context.Context, key string) (string, error) {
	return r.c.Get(ctx, key), nil
}

func (r *RedisAdapter) SetEX(ctx context.Context, key, val string, ttl time.Duration) error {
	return r.c.SetTTL(ctx, key, val, ttl)
}

func (r *RedisAdapter) Del(ctx context.Context, keys ...string) error {
	r.c.Del(ctx, keys...)
	return nil
}

func (r *RedisAdapter) RemainingTTL(ctx context.Context, key string) (time.Duration, bool) {
	// -2 不存在; -1 无过期
	d, err := r.c.Client.TTL(ctx, key).Result()
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}
