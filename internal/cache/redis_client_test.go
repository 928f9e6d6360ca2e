package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Nazarious-ucu/waitlist-api/internal/cache"
	"github.com/Nazarious-ucu/waitlist-api/internal/models"
)

type fakeRedis struct {
	data   map[string]string
	ttl    map[string]time.Duration
	getErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.data[key] = string(value.([]byte))
	f.ttl[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisClient_SetGet(t *testing.T) {
	fake := newFakeRedis()
	c := cache.NewRedisClient[models.Stats](fake, zap.NewNop())
	ctx := context.Background()

	in := models.Stats{Pending: 1, Confirmed: 2, ConfirmedToday: 3}
	require.NoError(t, c.Set(ctx, "stats", in, time.Minute))
	assert.Equal(t, time.Minute, fake.ttl["stats"])
	assert.JSONEq(t, `{"pending":1,"confirmed":2,"confirmedToday":3}`, fake.data["stats"])

	var out models.Stats
	require.NoError(t, c.Get(ctx, "stats", &out))
	assert.Equal(t, in, out)

	require.NoError(t, c.Delete(ctx, "stats"))
	assert.ErrorIs(t, c.Get(ctx, "stats", &out), cache.ErrCacheMiss)
}

func TestRedisClient_GetError(t *testing.T) {
	fake := newFakeRedis()
	fake.getErr = errors.New("connection refused")
	c := cache.NewRedisClient[models.Stats](fake, zap.NewNop())

	var out models.Stats
	err := c.Get(context.Background(), "stats", &out)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, cache.ErrCacheMiss)
}
