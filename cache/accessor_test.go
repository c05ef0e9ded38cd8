package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"marketplace.app/errors"
)

type statsView struct {
	SellerID string  `json:"seller_id"`
	Revenue  float64 `json:"revenue"`
}

func TestGetOrCompute(t *testing.T) {
	ctx := context.Background()

	t.Run("MissThenHit", func(t *testing.T) {
		_, store := setupRedisStore(t)
		accessor := NewAccessor(store)

		computed := 0
		compute := func(ctx context.Context) (statsView, error) {
			computed++
			return statsView{SellerID: "s1", Revenue: 42.5}, nil
		}

		// First read misses and computes
		view, err := GetOrCompute(ctx, accessor, ViewSellerStats, SellerStatsKey("s1"), time.Minute, compute)
		require.NoError(t, err)
		assert.Equal(t, 42.5, view.Revenue)
		assert.Equal(t, 1, computed)

		// Second read is served from cache without touching the primary store
		view, err = GetOrCompute(ctx, accessor, ViewSellerStats, SellerStatsKey("s1"), time.Minute, compute)
		require.NoError(t, err)
		assert.Equal(t, 42.5, view.Revenue)
		assert.Equal(t, 1, computed)
	})

	t.Run("ComputeErrorPropagates", func(t *testing.T) {
		_, store := setupRedisStore(t)
		accessor := NewAccessor(store)

		_, err := GetOrCompute(ctx, accessor, ViewSellerStats, SellerStatsKey("s2"), time.Minute,
			func(ctx context.Context) (statsView, error) {
				return statsView{}, errors.NewDatabaseError("primary store down", nil)
			})

		assert.Error(t, err)
		assert.True(t, errors.IsDatabaseError(err))

		// Nothing was cached for the failed computation
		_, found, getErr := store.Get(ctx, SellerStatsKey("s2"))
		assert.NoError(t, getErr)
		assert.False(t, found)
	})

	t.Run("DegradedModeOnCacheOutage", func(t *testing.T) {
		mockRedis, store := setupRedisStore(t)
		accessor := NewAccessor(store)

		mockRedis.Close()

		computed := 0
		view, err := GetOrCompute(ctx, accessor, ViewSellerStats, SellerStatsKey("s3"), time.Minute,
			func(ctx context.Context) (statsView, error) {
				computed++
				return statsView{SellerID: "s3", Revenue: 7}, nil
			})

		// The read succeeds despite the cache being unreachable
		require.NoError(t, err)
		assert.Equal(t, float64(7), view.Revenue)
		assert.Equal(t, 1, computed)
	})

	t.Run("IdempotentRebuild", func(t *testing.T) {
		// Two independent misses computing from the same underlying data must
		// produce byte-identical cached payloads.
		mockRedis, store := setupRedisStore(t)
		accessor := NewAccessor(store)

		compute := func(ctx context.Context) (statsView, error) {
			return statsView{SellerID: "s4", Revenue: 99.99}, nil
		}

		_, err := GetOrCompute(ctx, accessor, ViewSellerStats, SellerStatsKey("s4"), time.Minute, compute)
		require.NoError(t, err)
		first, err := mockRedis.Get(SellerStatsKey("s4"))
		require.NoError(t, err)

		mockRedis.Del(SellerStatsKey("s4"))

		_, err = GetOrCompute(ctx, accessor, ViewSellerStats, SellerStatsKey("s4"), time.Minute, compute)
		require.NoError(t, err)
		second, err := mockRedis.Get(SellerStatsKey("s4"))
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("CorruptEntryRecomputed", func(t *testing.T) {
		_, store := setupRedisStore(t)
		accessor := NewAccessor(store)
		require.NoError(t, store.SetWithTTL(ctx, SellerStatsKey("s5"), []byte("not-json"), time.Minute))

		view, err := GetOrCompute(ctx, accessor, ViewSellerStats, SellerStatsKey("s5"), time.Minute,
			func(ctx context.Context) (statsView, error) {
				return statsView{SellerID: "s5", Revenue: 1}, nil
			})

		require.NoError(t, err)
		assert.Equal(t, "s5", view.SellerID)
	})
}
