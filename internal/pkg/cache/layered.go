package cache

import (
	"context"
	"time"

	"go-rbacadmin/internal/metrics"
)

// LayeredCache L1 (本地) + L2 (远程)
// 读：L1 -> L2(命中回填 L1) -> miss；写/删：两层都做
type LayeredCache struct {
	L1 Cache
	L2 Cache
}

func NewLayered(l1, l2 Cache) *LayeredCache { return &LayeredCache{L1: l1, L2: l2} }

func (c *LayeredCache) Get(ctx context.Context, key string) (string, error) {
	if c.L1 != nil {
		if v, _ := c.L1.Get(ctx, key); v != "" {
			metrics.CacheOps.WithLabelValues("hit_l1").Inc()
			return v, nil
		}
	}
	if c.L2 != nil {
		if v, _ := c.L2.Get(ctx, key); v != "" {
			metrics.CacheOps.WithLabelValues("hit_l2").Inc()
			if c.L1 != nil {
				ttl := 30 * time.Second
				if tf, ok := c.L2.(TTLFetcher); ok {
					if d, ok2 := tf.RemainingTTL(ctx, key); ok2 {
						ttl = d
					}
				}
				_ = c.L1.SetEX(ctx, key, v, ttl)
			}
			return v, nil
		}
	}
	metrics.CacheOps.WithLabelValues("miss").Inc()
	return "", nil
}

func (c *LayeredCache) SetEX(ctx context.Context, key, val string, ttl time.Duration) error {
	if c.L1 != nil {
		_ = c.L1.SetEX(ctx, key, val, ttl)
	}
	metrics.CacheOps.WithLabelValues("set").Inc()
	if c.L2 != nil {
		return c.L2.SetEX(ctx, key, val, ttl)
	}
	return nil
}

func (c *LayeredCache) Del(ctx context.Context, keys ...string) error {
	if c.L1 != nil {
		_ = c.L1.Del(ctx, keys...)
	}
	metrics.CacheOps.WithLabelValues("del").Inc()
	if c.L2 != nil {
		return c.L2.Del(ctx, keys...)
	}
	return nil
}
