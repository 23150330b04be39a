package cache

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"
)

// nilSentinel 空结果占位，防止缓存穿透
const nilSentinel = "\x00nil"

func WrapNil() string { return nilSentinel }

func IsNilSentinel(v string) bool { return v == nilSentinel }

// JitterTTL 在 ttl 基础上随机增加至多 10%，避免同一批 key 同时过期
func JitterTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return ttl
	}
	span := int64(ttl / 10)
	if span <= 0 {
		return ttl
	}
	return ttl + time.Duration(rand.Int63n(span))
}

// GetJSON 命中返回 true；损坏的缓存值按 miss 处理
func GetJSON(ctx context.Context, c Cache, key string, out interface{}) bool {
	if c == nil {
		return false
	}
	v, err := c.Get(ctx, key)
	if err != nil || v == "" || IsNilSentinel(v) {
		return false
	}
	return json.Unmarshal([]byte(v), out) == nil
}

func SetJSON(ctx context.Context, c Cache, key string, v interface{}, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.SetEX(ctx, key, string(b), JitterTTL(ttl))
}
