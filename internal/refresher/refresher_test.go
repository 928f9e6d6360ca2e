package refresher_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Nazarious-ucu/waitlist-api/internal/metrics"
	"github.com/Nazarious-ucu/waitlist-api/internal/models"
	"github.com/Nazarious-ucu/waitlist-api/internal/refresher"
)

type stubCounter struct {
	counts map[models.Status]int64
	errFor models.Status
}

func (s *stubCounter) CountByStatus(_ context.Context, status models.Status) (int64, error) {
	if status == s.errFor {
		return 0, errors.New("db down")
	}
	return s.counts[status], nil
}

func TestRefresh_SetsGauges(t *testing.T) {
	m := metrics.NewMetrics("test", nil, "")
	repo := &stubCounter{counts: map[models.Status]int64{
		models.StatusPending:   3,
		models.StatusConfirmed: 8,
	}}

	refresher.New(repo, zap.NewNop(), "@every 1m", m).Refresh(context.Background())

	assert.InDelta(t, 3, testutil.ToFloat64(m.Subscribers.WithLabelValues("pending")), 0)
	assert.InDelta(t, 8, testutil.ToFloat64(m.Subscribers.WithLabelValues("confirmed")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.CronRuns.WithLabelValues("refresh_subscribers")), 0)
}

func TestRefresh_CountErrorKeepsOtherGauge(t *testing.T) {
	m := metrics.NewMetrics("test", nil, "")
	repo := &stubCounter{
		counts: map[models.Status]int64{models.StatusConfirmed: 5},
		errFor: models.StatusPending,
	}

	refresher.New(repo, zap.NewNop(), "@every 1m", m).Refresh(context.Background())

	assert.InDelta(t, 5, testutil.ToFloat64(m.Subscribers.WithLabelValues("confirmed")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.TechnicalErrors.WithLabelValues("refresh_count", "warning")), 0)
}

func TestStartStop(t *testing.T) {
	m := metrics.NewMetrics("test", nil, "")
	repo := &stubCounter{counts: map[models.Status]int64{models.StatusPending: 1}}
	r := refresher.New(repo, zap.NewNop(), "@every 1h", m)

	require.NoError(t, r.Start(context.Background()))
	assert.InDelta(t, 1, testutil.ToFloat64(m.Subscribers.WithLabelValues("pending")), 0)
	r.Stop()
}

func TestStart_InvalidSpec(t *testing.T) {
	m := metrics.NewMetrics("test", nil, "")
	r := refresher.New(&stubCounter{}, zap.NewNop(), "not a schedule", m)

	assert.Error(t, r.Start(context.Background()))
	assert.InDelta(t, 1, testutil.ToFloat64(m.TechnicalErrors.WithLabelValues("cron_schedule_error", "critical")), 0)
}
