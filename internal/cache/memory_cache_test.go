package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vandonov/storefront/internal/cache"
)

func TestMemoryCacheSetGet(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache(time.Minute)

	t.Run("RoundTrip", func(t *testing.T) {
		// Arrange
		type payload struct {
			Name  string `json:"name"`
			Count int    `json:"count"`
		}

		require.NoError(t, c.Set(ctx, "k1", payload{Name: "mug", Count: 2}, 0))

		// Act
		var got payload
		hit, err := c.Get(ctx, "k1", &got)

		// Assert
		require.NoError(t, err)
		assert.True(t, hit)
		assert.Equal(t, "mug", got.Name)
		assert.Equal(t, 2, got.Count)
	})

	t.Run("MissOnUnknownKey", func(t *testing.T) {
		var got string
		hit, err := c.Get(ctx, "nope", &got)

		require.NoError(t, err)
		assert.False(t, hit)
	})

	t.Run("ExpiredEntryIsMiss", func(t *testing.T) {
		// Arrange
		require.NoError(t, c.Set(ctx, "short", "v", time.Nanosecond))
		time.Sleep(5 * time.Millisecond)

		// Act
		var got string
		hit, err := c.Get(ctx, "short", &got)

		// Assert
		require.NoError(t, err)
		assert.False(t, hit)
	})
}

func TestMemoryCacheDelete(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache(time.Minute)

	require.NoError(t, c.Set(ctx, "k1", "v1", 0))
	require.NoError(t, c.Delete(ctx, "k1"))

	var got string
	hit, err := c.Get(ctx, "k1", &got)

	require.NoError(t, err)
	assert.False(t, hit)
}

func TestMemoryCacheFlushTagClearsEverything(t *testing.T) {
	// The memory backend has no per-tag bookkeeping: invalidating any tag
	// drops the whole cache.
	ctx := context.Background()
	c := cache.NewMemoryCache(time.Minute)

	require.NoError(t, c.Set(ctx, "tagged", "v1", 0, "orders:list:7"))
	require.NoError(t, c.Set(ctx, "untagged", "v2", 0))

	require.NoError(t, c.FlushTag(ctx, "orders:list:7"))

	var got string

	hit, err := c.Get(ctx, "tagged", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	hit, err = c.Get(ctx, "untagged", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}
