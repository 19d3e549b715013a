package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	type snapshot struct {
		Generation int     `json:"generation"`
		BestScore  float64 `json:"best_score"`
	}

	require.NoError(t, mc.Set(ctx, "status", snapshot{Generation: 3, BestScore: 1.5}, time.Minute))

	var got snapshot
	require.NoError(t, mc.Get(ctx, "status", &got))
	assert.Equal(t, 3, got.Generation)
	assert.Equal(t, 1.5, got.BestScore)
}

func TestMemoryCacheMiss(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	var out string
	err := mc.Get(context.Background(), "absent", &out)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", "v", 10*time.Millisecond))
	time.Sleep(25 * time.Millisecond)

	var out string
	assert.ErrorIs(t, mc.Get(ctx, "k", &out), ErrCacheMiss)
}

func TestMemoryCacheDelete(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", "v", time.Minute))
	require.NoError(t, mc.Delete(ctx, "k"))

	var out string
	assert.ErrorIs(t, mc.Get(ctx, "k", &out), ErrCacheMiss)
}

func TestMemoryCacheEviction(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", 1, time.Minute))
	require.NoError(t, mc.Set(ctx, "b", 2, time.Minute))
	require.NoError(t, mc.Set(ctx, "c", 3, time.Minute))

	count := 0
	for _, key := range []string{"a", "b", "c"} {
		var out int
		if mc.Get(ctx, key, &out) == nil {
			count++
		}
	}
	assert.Equal(t, 2, count)
}

func TestMemoryCacheCloseIsIdempotent(t *testing.T) {
	mc := NewMemoryCache()
	require.NoError(t, mc.Close())
	require.NoError(t, mc.Close())
}
