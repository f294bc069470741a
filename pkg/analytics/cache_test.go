package analytics

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	cache, err := NewMemoryCache(2, time.Minute)
	require.NoError(t, err)

	summary := DailySummary{DailyMetrics: DailyMetrics{Date: "2026-03-10"}}
	require.NoError(t, cache.Set(ctx, "a", &summary))

	summary.Date = "changed after caching"

	cached := DailySummary{}
	hit, err := cache.Get(ctx, "a", &cached)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "2026-03-10", cached.Date)

	hit, err = cache.Get(ctx, "missing", &cached)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(ctx, "b", &summary))
	require.NoError(t, cache.Set(ctx, "c", &summary))
	hit, _ = cache.Get(ctx, "a", &cached)
	assert.False(t, hit, "least recently used entry must be evicted")
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	cache, err := NewMemoryCache(4, -time.Second)
	require.NoError(t, err)

	require.NoError(t, cache.Set(ctx, "a", &DailySummary{}))

	hit, err := cache.Get(ctx, "a", &DailySummary{})
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "analytics:burnout:u1:14:2026-03-10:7", CacheKey(KindBurnout, "u1", "14:2026-03-10", 7))
	assert.NotEqual(t, CacheKey(KindBurnout, "u1", "14", 7), CacheKey(KindBurnout, "u1", "14", 8))
}
