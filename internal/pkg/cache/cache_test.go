package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := New()
	require.NoError(t, c.SetEX(ctx, "a", "1", 20*time.Millisecond))
	v, _ := c.Get(ctx, "a")
	assert.Equal(t, "1", v)
	ttl, ok := c.RemainingTTL(ctx, "a")
	assert.True(t, ok)
	assert.LessOrEqual(t, ttl, 20*time.Millisecond)

	time.Sleep(30 * time.Millisecond)
	v, _ = c.Get(ctx, "a")
	assert.Empty(t, v)
}

func TestLayered_BackfillsL1FromL2(t *testing.T) {
	ctx := context.Background()
	l1, l2 := New(), New()
	lc := NewLayered(l1, l2)

	require.NoError(t, l2.SetEX(ctx, "perm:admin:2", `["a"]`, time.Minute))
	v, _ := lc.Get(ctx, "perm:admin:2")
	assert.Equal(t, `["a"]`, v)

	fromL1, _ := l1.Get(ctx, "perm:admin:2")
	assert.Equal(t, `["a"]`, fromL1)
	ttl, ok := l1.RemainingTTL(ctx, "perm:admin:2")
	assert.True(t, ok)
	assert.Greater(t, ttl, 50*time.Second)

	require.NoError(t, lc.Del(ctx, "perm:admin:2"))
	v, _ = lc.Get(ctx, "perm:admin:2")
	assert.Empty(t, v)
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c := New()
	require.NoError(t, SetJSON(ctx, c, "k", []int64{1, 2}, time.Minute))
	var got []int64
	assert.True(t, GetJSON(ctx, c, "k", &got))
	assert.Equal(t, []int64{1, 2}, got)

	_ = c.SetEX(ctx, "nil", WrapNil(), time.Minute)
	assert.False(t, GetJSON(ctx, c, "nil", &got))
	_ = c.SetEX(ctx, "bad", "{", time.Minute)
	assert.False(t, GetJSON(ctx, c, "bad", &got))
	assert.False(t, GetJSON(ctx, nil, "k", &got))
}

func TestJitterTTL(t *testing.T) {
	for i := 0; i < 20; i++ {
		d := JitterTTL(time.Minute)
		assert.GreaterOrEqual(t, d, time.Minute)
		assert.Less(t, d, time.Minute+6*time.Second)
	}
	assert.Equal(t, time.Duration(0), JitterTTL(0))
}
