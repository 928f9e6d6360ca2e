package refresher

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Nazarious-ucu/waitlist-api/internal/metrics"
	"github.com/Nazarious-ucu/waitlist-api/internal/models"
)

const (
	timeoutDuration = 30 * time.Second

	jobName = "refresh_subscribers"
)

type subscriberCounter interface {
	CountByStatus(ctx context.Context, status models.Status) (int64, error)
}

// Refresher keeps the subscribers gauge in line with the table on a cron schedule.
type Refresher struct {
	repo   subscriberCounter
	logger *zap.Logger
	cron   *cron.Cron
	cancel context.CancelFunc
	m      *metrics.Metrics
	spec   string
}

func New(repo subscriberCounter, logger *zap.Logger, spec string, m *metrics.Metrics) *Refresher {
	return &Refresher{
		repo:   repo,
		logger: logger.With(zap.String("component", "Refresher")),
		cron:   cron.New(),
		m:      m,
		spec:   spec,
	}
}

// Start refreshes once and then on every tick of the schedule.
func (r *Refresher) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	if _, err := r.cron.AddFunc(r.spec, func() { r.Refresh(ctx) }); err != nil {
		cancel()
		r.logger.Error("failed to schedule refresh job", zap.String("spec", r.spec), zap.Error(err))
		r.m.Technical("cron_schedule_error", "critical")
		return err
	}

	r.Refresh(ctx)
	r.cron.Start()
	r.logger.Info("subscriber gauge refresher started", zap.String("spec", r.spec))
	return nil
}

// Stop cancels the running job and waits for it to finish.
func (r *Refresher) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	<-r.cron.Stop().Done()
	r.logger.Info("refresher stopped")
}

func (r *Refresher) Refresh(ctx context.Context) {
	r.m.CronJob(jobName, func() {
		ctx, cancel := context.WithTimeout(ctx, timeoutDuration)
		defer cancel()

		for _, status := range []models.Status{models.StatusPending, models.StatusConfirmed} {
			count, err := r.repo.CountByStatus(ctx, status)
			if err != nil {
				r.logger.Error("failed to count subscribers", zap.String("status", string(status)), zap.Error(err))
				r.m.Technical("refresh_count", "warning")
				continue
			}
			r.m.Subscribers.WithLabelValues(string(status)).Set(float64(count))
		}
	})
}
