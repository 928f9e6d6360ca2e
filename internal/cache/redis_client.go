package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrCacheMiss = errors.New("cache miss")

type redisCmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisClient stores JSON-encoded values of type T.
type RedisClient[T any] struct {
	client redisCmdable
	logger *zap.Logger
}

func NewRedisClient[T any](client redisCmdable, logger *zap.Logger) *RedisClient[T] {
	return &RedisClient[T]{client: client, logger: logger.With(zap.String("component", "RedisClient"))}
}

func (c *RedisClient[T]) Set(
	ctx context.Context,
	key string,
	value T,
	expiration time.Duration,
) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.logger.Debug("cache set", zap.String("key", key), zap.Duration("ttl", expiration))
	return c.client.Set(ctx, key, data, expiration).Err()
}

// Get decodes the value under key into returnValue; a missing key is ErrCacheMiss.
func (c *RedisClient[T]) Get(ctx context.Context, key string, returnValue *T) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}

	return json.Unmarshal(data, returnValue)
}

func (c *RedisClient[T]) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
