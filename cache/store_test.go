package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"marketplace.app/config"
	"marketplace.app/errors"
)

// setupRedisStore creates a Store backed by a mock Redis server
func setupRedisStore(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()

	mockRedis := miniredis.RunT(t)

	store, err := NewRedisStore(&config.RedisConfig{
		Addr:         mockRedis.Addr(),
		DB:           0,
		DialTimeout:  5,
		ReadTimeout:  3,
		WriteTimeout: 3,
	})
	require.NoError(t, err)

	return mockRedis, store
}

func TestNewRedisStore(t *testing.T) {
	t.Run("NilConfig", func(t *testing.T) {
		store, err := NewRedisStore(nil)
		assert.Error(t, err)
		assert.Nil(t, store)
		assert.True(t, errors.IsConfigurationError(err))
	})

	t.Run("UnreachableServer", func(t *testing.T) {
		store, err := NewRedisStore(&config.RedisConfig{
			Addr:         "localhost:1",
			DialTimeout:  1,
			ReadTimeout:  1,
			WriteTimeout: 1,
		})
		assert.Error(t, err)
		assert.Nil(t, store)
		assert.True(t, errors.IsCacheUnavailableError(err))
	})
}

func TestRedisStore_Operations(t *testing.T) {
	mockRedis, store := setupRedisStore(t)
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		require.NoError(t, store.SetWithTTL(ctx, "product-p1", []byte(`{"id":"p1"}`), time.Minute))

		data, found, err := store.Get(ctx, "product-p1")
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []byte(`{"id":"p1"}`), data)
	})

	t.Run("GetMiss", func(t *testing.T) {
		data, found, err := store.Get(ctx, "product-missing")
		assert.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, data)
	})

	t.Run("TTLExpiry", func(t *testing.T) {
		require.NoError(t, store.SetWithTTL(ctx, "seller-stats-s1", []byte("{}"), 30*time.Second))

		mockRedis.FastForward(31 * time.Second)

		_, found, err := store.Get(ctx, "seller-stats-s1")
		assert.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("DeleteMany", func(t *testing.T) {
		require.NoError(t, store.SetWithTTL(ctx, "product-a", []byte("1"), time.Minute))
		require.NoError(t, store.SetWithTTL(ctx, "product-b", []byte("2"), time.Minute))
		require.NoError(t, store.SetWithTTL(ctx, "product-c", []byte("3"), time.Minute))

		require.NoError(t, store.DeleteMany(ctx, "product-a", "product-b"))

		_, found, _ := store.Get(ctx, "product-a")
		assert.False(t, found)
		_, found, _ = store.Get(ctx, "product-b")
		assert.False(t, found)
		_, found, _ = store.Get(ctx, "product-c")
		assert.True(t, found)
	})

	t.Run("DeleteManyEmpty", func(t *testing.T) {
		assert.NoError(t, store.DeleteMany(ctx))
	})

	t.Run("IncrementAndExpire", func(t *testing.T) {
		count, err := store.Increment(ctx, "login-attempts:1.2.3.4")
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		count, err = store.Increment(ctx, "login-attempts:1.2.3.4")
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		require.NoError(t, store.Expire(ctx, "login-attempts:1.2.3.4", 5*time.Minute))
		mockRedis.FastForward(6 * time.Minute)

		count, err = store.Increment(ctx, "login-attempts:1.2.3.4")
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("StoreUnreachable", func(t *testing.T) {
		mockRedis.Close()

		_, _, err := store.Get(ctx, "product-p1")
		assert.Error(t, err)
		assert.True(t, errors.IsCacheUnavailableError(err))

		err = store.SetWithTTL(ctx, "product-p1", []byte("x"), time.Minute)
		assert.Error(t, err)
		assert.True(t, errors.IsCacheUnavailableError(err))
	})
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	t.Run("BasicOperations", func(t *testing.T) {
		require.NoError(t, store.SetWithTTL(ctx, "product-m1", []byte("cached"), time.Minute))

		data, found, err := store.Get(ctx, "product-m1")
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []byte("cached"), data)

		require.NoError(t, store.DeleteMany(ctx, "product-m1"))
		_, found, _ = store.Get(ctx, "product-m1")
		assert.False(t, found)
	})

	t.Run("TTLExpiry", func(t *testing.T) {
		require.NoError(t, store.SetWithTTL(ctx, "product-m2", []byte("short"), 50*time.Millisecond))

		time.Sleep(100 * time.Millisecond)

		_, found, _ := store.Get(ctx, "product-m2")
		assert.False(t, found)
	})

	t.Run("CounterResetAfterExpiry", func(t *testing.T) {
		count, err := store.Increment(ctx, "login-attempts:me")
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		require.NoError(t, store.Expire(ctx, "login-attempts:me", 50*time.Millisecond))
		time.Sleep(100 * time.Millisecond)

		count, err = store.Increment(ctx, "login-attempts:me")
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}
