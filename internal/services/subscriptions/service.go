package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Nazarious-ucu/waitlist-api/internal/metrics"
	"github.com/Nazarious-ucu/waitlist-api/internal/models"
	"github.com/Nazarious-ucu/waitlist-api/internal/repository"
	"github.com/Nazarious-ucu/waitlist-api/internal/token"
	"github.com/Nazarious-ucu/waitlist-api/internal/validation"
)

var (
	ErrMissingFields     = errors.New("email and consent are required")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrAlreadySubscribed = errors.New("email already confirmed")
)

type Outcome int

const (
	OutcomeIgnored Outcome = iota
	OutcomeCreated
	OutcomeResent
)

type ConfirmResult int

const (
	ConfirmInvalid ConfirmResult = iota
	ConfirmSuccess
	ConfirmAlready
)

func (r ConfirmResult) String() string {
	switch r {
	case ConfirmSuccess:
		return "success"
	case ConfirmAlready:
		return "already"
	case ConfirmInvalid:
		return "invalid"
	}
	return "invalid"
}

type SubscriberRepository interface {
	FindByEmail(ctx context.Context, email string) (models.Subscriber, error)
	FindByToken(ctx context.Context, confirmToken string) (models.Subscriber, error)
	InsertPending(ctx context.Context, rec models.PendingSubscriber) (int64, error)
	RegenerateToken(ctx context.Context, id int64, newToken string) error
	Confirm(ctx context.Context, id int64, consumedToken string) (bool, error)
	ListConfirmed(ctx context.Context) ([]models.ConfirmedSubscriber, error)
	CountByStatus(ctx context.Context, status models.Status) (int64, error)
	CountConfirmedSince(ctx context.Context, since time.Time) (int64, error)
}

type ConfirmationEmailer interface {
	SendConfirmation(ctx context.Context, email string, dogName *string, token string) error
}

// StatsInvalidator drops cached aggregates after the subscribers table changes.
type StatsInvalidator interface {
	Invalidate(ctx context.Context)
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate(context.Context) {}

type Service struct {
	repo        SubscriberRepository
	emailer     ConfirmationEmailer
	stats       StatsInvalidator
	consentText string
	logger      *zap.Logger
	m           *metrics.Metrics

	newToken func() (string, error)
	now      func() time.Time
}

func NewService(
	repo SubscriberRepository,
	emailService ConfirmationEmailer,
	consentText string,
	logger *zap.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		repo:        repo,
		emailer:     emailService,
		stats:       noopInvalidator{},
		consentText: consentText,
		logger:      logger.With(zap.String("component", "SubscriptionService")),
		m:           m,
		newToken:    token.Generate,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source, mainly for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithStatsInvalidator registers the cache to drop after every write.
func (s *Service) WithStatsInvalidator(inv StatsInvalidator) *Service {
	s.stats = inv
	return s
}

// WithTokenGenerator replaces the confirm token source.
func (s *Service) WithTokenGenerator(gen func() (string, error)) *Service {
	s.newToken = gen
	return s
}

// Subscribe registers a pending subscriber or re-sends the confirmation to an
// existing pending one. Bot submissions caught by the honeypot are dropped
// silently with OutcomeIgnored.
func (s *Service) Subscribe(ctx context.Context, req models.SubscribeRequest, ip string) (Outcome, error) {
	if req.Honeypot {
		s.m.HoneypotHits.Inc()
		s.logger.Info("honeypot submission dropped", zap.String("ip", ip))
		return OutcomeIgnored, nil
	}

	if req.Email == "" || !bool(req.Consent) {
		s.m.Business("missing_fields", "low")
		return OutcomeIgnored, ErrMissingFields
	}
	if !validation.IsValidEmail(req.Email) {
		s.m.Business("invalid_email", "low")
		return OutcomeIgnored, ErrInvalidEmail
	}

	email := validation.NormalizeEmail(req.Email)
	dogName := validation.SanitizeDogName(req.DogName)
	if dogName != nil && validation.HasMarkup(*dogName) {
		s.m.Business("dog_name_markup", "low")
		s.logger.Info("dog name contains markup", zap.String("ip", ip))
	}
	source := validation.NormalizeSource(req.Source)

	confirmToken, err := s.newToken()
	if err != nil {
		return OutcomeIgnored, fmt.Errorf("generate token: %w", err)
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return s.create(ctx, models.PendingSubscriber{
			Email:            email,
			DogName:          dogName,
			ConfirmToken:     confirmToken,
			ConsentTimestamp: s.now(),
			ConsentText:      s.consentText,
			IPAddress:        ip,
			Source:           source,
		})
	case err != nil:
		return OutcomeIgnored, fmt.Errorf("find subscriber: %w", err)
	}

	switch existing.Status {
	case models.StatusConfirmed:
		s.m.Business("already_subscribed", "low")
		return OutcomeIgnored, ErrAlreadySubscribed
	case models.StatusPending:
		return s.resend(ctx, existing.ID, email, dogName, confirmToken)
	}
	return OutcomeIgnored, fmt.Errorf("subscriber %d has unknown status %q", existing.ID, existing.Status)
}

func (s *Service) create(ctx context.Context, rec models.PendingSubscriber) (Outcome, error) {
	id, err := s.repo.InsertPending(ctx, rec)
	if err != nil {
		return OutcomeIgnored, fmt.Errorf("insert subscriber: %w", err)
	}
	s.stats.Invalidate(ctx)

	if err := s.emailer.SendConfirmation(ctx, rec.Email, rec.DogName, rec.ConfirmToken); err != nil {
		return OutcomeIgnored, fmt.Errorf("send confirmation: %w", err)
	}

	s.m.SubscriptionsCreated.WithLabelValues(string(rec.Source)).Inc()
	s.logger.Info("subscriber created", zap.Int64("id", id), zap.String("source", string(rec.Source)))
	return OutcomeCreated, nil
}

func (s *Service) resend(ctx context.Context, id int64, email string, dogName *string, confirmToken string) (Outcome, error) {
	if err := s.repo.RegenerateToken(ctx, id, confirmToken); err != nil {
		return OutcomeIgnored, fmt.Errorf("regenerate token: %w", err)
	}
	s.stats.Invalidate(ctx)

	if err := s.emailer.SendConfirmation(ctx, email, dogName, confirmToken); err != nil {
		return OutcomeIgnored, fmt.Errorf("resend confirmation: %w", err)
	}

	s.m.SubscriptionsResent.Inc()
	s.logger.Info("confirmation resent", zap.Int64("id", id))
	return OutcomeResent, nil
}

// Confirm consumes a confirm token. Unknown or empty tokens are ConfirmInvalid;
// an error is only returned for store failures.
func (s *Service) Confirm(ctx context.Context, confirmToken string) (ConfirmResult, error) {
	if confirmToken == "" {
		return ConfirmInvalid, nil
	}

	sub, err := s.repo.FindByToken(ctx, confirmToken)
	if errors.Is(err, repository.ErrNotFound) {
		s.m.Business("invalid_token", "low")
		return ConfirmInvalid, nil
	}
	if err != nil {
		return ConfirmInvalid, fmt.Errorf("find by token: %w", err)
	}

	switch sub.Status {
	case models.StatusConfirmed:
		return ConfirmAlready, nil
	case models.StatusPending:
	default:
		return ConfirmInvalid, fmt.Errorf("subscriber %d has unknown status %q", sub.ID, sub.Status)
	}

	updated, err := s.repo.Confirm(ctx, sub.ID, confirmToken)
	if err != nil {
		return ConfirmInvalid, fmt.Errorf("confirm subscriber: %w", err)
	}
	s.stats.Invalidate(ctx)
	if !updated {
		return ConfirmAlready, nil
	}

	s.m.SubscriptionsConfirmed.Inc()
	s.logger.Info("subscriber confirmed", zap.Int64("id", sub.ID))
	return ConfirmSuccess, nil
}

// Export lists confirmed subscribers, most recent confirmation first.
func (s *Service) Export(ctx context.Context) ([]models.ConfirmedSubscriber, error) {
	return s.repo.ListConfirmed(ctx)
}

// Stats counts subscribers by status; confirmedToday starts at UTC midnight.
func (s *Service) Stats(ctx context.Context) (models.Stats, error) {
	pending, err := s.repo.CountByStatus(ctx, models.StatusPending)
	if err != nil {
		return models.Stats{}, fmt.Errorf("count pending: %w", err)
	}
	confirmed, err := s.repo.CountByStatus(ctx, models.StatusConfirmed)
	if err != nil {
		return models.Stats{}, fmt.Errorf("count confirmed: %w", err)
	}

	now := s.now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	today, err := s.repo.CountConfirmedSince(ctx, startOfDay)
	if err != nil {
		return models.Stats{}, fmt.Errorf("count confirmed today: %w", err)
	}

	return models.Stats{Pending: pending, Confirmed: confirmed, ConfirmedToday: today}, nil
}
