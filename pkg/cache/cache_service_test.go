package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type coursePayload struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, "test:"), mr
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()

	t.Run("miss", func(t *testing.T) {
		c, _ := newTestCache(t)
		var got coursePayload
		assert.ErrorIs(t, c.Get(ctx, "course:go", &got), ErrCacheMiss)
	})

	t.Run("set then get", func(t *testing.T) {
		c, mr := newTestCache(t)
		require.NoError(t, c.Set(ctx, "course:go", coursePayload{Slug: "go", Title: "Go 实战"}, time.Minute))

		var got coursePayload
		require.NoError(t, c.Get(ctx, "course:go", &got))
		assert.Equal(t, "Go 实战", got.Title)
		assert.True(t, mr.Exists("test:course:go"))
	})

	t.Run("expires", func(t *testing.T) {
		c, mr := newTestCache(t)
		require.NoError(t, c.Set(ctx, "k", 1, time.Second))
		mr.FastForward(2 * time.Second)

		var got int
		assert.ErrorIs(t, c.Get(ctx, "k", &got), ErrCacheMiss)
	})

	t.Run("invalidate pattern", func(t *testing.T) {
		c, mr := newTestCache(t)
		require.NoError(t, c.Set(ctx, "course:a", 1, time.Minute))
		require.NoError(t, c.Set(ctx, "course:b", 2, time.Minute))
		require.NoError(t, c.Set(ctx, "plan:list", 3, time.Minute))

		require.NoError(t, c.InvalidatePattern(ctx, "course:*"))
		assert.False(t, mr.Exists("test:course:a"))
		assert.False(t, mr.Exists("test:course:b"))
		assert.True(t, mr.Exists("test:plan:list"))
	})

	t.Run("delete", func(t *testing.T) {
		c, mr := newTestCache(t)
		require.NoError(t, c.Set(ctx, "a", 1, time.Minute))
		require.NoError(t, c.Delete(ctx, "a", "missing"))
		assert.False(t, mr.Exists("test:a"))
	})
}
