package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	"marketplace.app/config"
	"marketplace.app/errors"
)

// RedisStore implements Store backed by Redis
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(cfg *config.RedisConfig) (*RedisStore, error) {
	if cfg == nil {
		return nil, errors.NewConfigurationError("redis config cannot be nil", nil)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  time.Duration(cfg.DialTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.NewCacheUnavailableError("failed to connect to Redis", err)
	}

	slog.Info("Redis cache connected successfully", "addr", cfg.Addr)

	return &RedisStore{client: client}, nil
}

// NewRedisStoreFromClient wraps an existing client; used by tests
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, errors.NewCacheUnavailableError("redis get failed", err)
	}
	return []byte(val), true, nil
}

func (r *RedisStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return errors.NewCacheUnavailableError("redis set failed", err)
	}
	return nil
}

func (r *RedisStore) DeleteMany(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return errors.NewCacheUnavailableError("redis delete failed", err)
	}
	return nil
}

func (r *RedisStore) Increment(ctx context.Context, key string) (int64, error) {
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, errors.NewCacheUnavailableError("redis incr failed", err)
	}
	return count, nil
}

func (r *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := r.client.Expire(ctx, key, ttl).Err(); err != nil {
		return errors.NewCacheUnavailableError("redis expire failed", err)
	}
	return nil
}

// Ping checks if the Redis connection is alive
func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return errors.NewCacheUnavailableError("redis ping failed", err)
	}
	return nil
}

// Close closes the Redis client connection
func (r *RedisStore) Close() error {
	return r.client.Close()
}
