package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheSetGet(t *testing.T) {
	c := New(Config{DefaultTTL: time.Minute})
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "a", 1)
	v, ok := c.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get(ctx, "missing")
	assert.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	c := New(Config{})
	defer c.Close()
	ctx := context.Background()

	c.SetWithTTL(ctx, "a", 1, time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	_, ok := c.Get(ctx, "a")
	assert.False(t, ok)
}

func TestCacheEviction(t *testing.T) {
	c := New(Config{MaxItems: 2})
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "a", 1)
	time.Sleep(time.Millisecond)
	c.Set(ctx, "b", 2)
	time.Sleep(time.Millisecond)
	c.Set(ctx, "c", 3)

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get(ctx, "a")
	assert.False(t, ok, "oldest entry should have been evicted")
	_, ok = c.Get(ctx, "c")
	assert.True(t, ok)
}

func TestCacheDeleteAndClear(t *testing.T) {
	c := New(Config{})
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "a", 1)
	c.Set(ctx, "b", 2)
	c.Delete(ctx, "a")
	_, ok := c.Get(ctx, "a")
	assert.False(t, ok)

	c.Clear(ctx)
	assert.Equal(t, 0, c.Len())
}
