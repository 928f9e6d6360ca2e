package cache

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	rediscache "github.com/Nazarious-ucu/waitlist-api/internal/cache"
	"github.com/Nazarious-ucu/waitlist-api/internal/metrics"
	"github.com/Nazarious-ucu/waitlist-api/internal/models"
)

const statsKey = "waitlist:stats"

type cache[T any] interface {
	Set(ctx context.Context, key string, value T, expiration time.Duration) error
	Get(ctx context.Context, key string, returnValue *T) error
	Delete(ctx context.Context, key string) error
}

type statsSource interface {
	Stats(ctx context.Context) (models.Stats, error)
}

// StatsDecorator serves admin stats from the cache for ttl. Writes to the
// subscribers table drop the entry through Invalidate. Cache failures fall
// through to the source and never fail the request.
type StatsDecorator struct {
	next   statsSource
	cache  cache[models.Stats]
	ttl    time.Duration
	logger *zap.Logger
	m      *metrics.Metrics
}

func NewStatsDecorator(
	next statsSource,
	c cache[models.Stats],
	ttl time.Duration,
	logger *zap.Logger,
	m *metrics.Metrics,
) *StatsDecorator {
	return &StatsDecorator{
		next:   next,
		cache:  c,
		ttl:    ttl,
		logger: logger.With(zap.String("component", "StatsDecorator")),
		m:      m,
	}
}

func (d *StatsDecorator) Stats(ctx context.Context) (models.Stats, error) {
	var cached models.Stats
	err := d.cache.Get(ctx, statsKey, &cached)
	switch {
	case err == nil:
		d.m.RecordCache("get", "hit")
		return cached, nil
	case errors.Is(err, rediscache.ErrCacheMiss):
		d.m.RecordCache("get", "miss")
	default:
		d.m.RecordCache("get", "error")
		d.logger.Warn("stats cache read failed", zap.Error(err))
	}

	stats, err := d.next.Stats(ctx)
	if err != nil {
		return models.Stats{}, err
	}

	if err := d.cache.Set(ctx, statsKey, stats, d.ttl); err != nil {
		d.m.RecordCache("set", "error")
		d.logger.Warn("stats cache write failed", zap.Error(err))
	} else {
		d.m.RecordCache("set", "ok")
	}
	return stats, nil
}

// Invalidate drops the cached stats so the next read goes to the source.
func (d *StatsDecorator) Invalidate(ctx context.Context) {
	if err := d.cache.Delete(ctx, statsKey); err != nil {
		d.m.RecordCache("delete", "error")
		d.logger.Warn("stats cache invalidation failed", zap.Error(err))
		return
	}
	d.m.RecordCache("delete", "ok")
}
