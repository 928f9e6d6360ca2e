package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Nazarious-ucu/waitlist-api/internal/metrics"
	"github.com/Nazarious-ucu/waitlist-api/internal/models"
	"github.com/Nazarious-ucu/waitlist-api/internal/token"
)

var ErrNotFound = errors.New("subscriber not found")

const subscriberColumns = `id, email, dog_name, status, confirm_token, consent_timestamp,
	consent_text, ip_address, source, confirmed_at, updated_at, created_at`

// SubscriberRepository runs the subscribers table queries with structured logging and metrics.
// Placeholders use the $n form, which both sqlite and PostgreSQL accept.
type SubscriberRepository struct {
	DB  *sql.DB
	log *zap.Logger
	m   *metrics.Metrics
	now func() time.Time
}

func NewSubscriberRepository(db *sql.DB, logger *zap.Logger, m *metrics.Metrics) *SubscriberRepository {
	return &SubscriberRepository{
		DB:  db,
		log: logger.With(zap.String("component", "SubscriberRepository")),
		m:   m,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// FindByEmail returns ErrNotFound when no row has the email.
func (r *SubscriberRepository) FindByEmail(ctx context.Context, email string) (models.Subscriber, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+subscriberColumns+` FROM subscribers WHERE email = $1`, email)

	sub, err := scanSubscriber(row)
	if err != nil && !errors.Is(err, ErrNotFound) {
		r.fail(ctx, err, "db_query_error", "failed to find subscriber by email")
	}
	return sub, err
}

// FindByToken matches a pending confirm token or the hash of an already consumed one.
func (r *SubscriberRepository) FindByToken(ctx context.Context, confirmToken string) (models.Subscriber, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+subscriberColumns+` FROM subscribers
		 WHERE confirm_token = $1 OR consumed_token_hash = $2`,
		confirmToken, token.Hash(confirmToken))

	sub, err := scanSubscriber(row)
	if err != nil && !errors.Is(err, ErrNotFound) {
		r.fail(ctx, err, "db_query_error", "failed to find subscriber by token")
	}
	return sub, err
}

// InsertPending stores a new pending subscriber and returns its id.
func (r *SubscriberRepository) InsertPending(ctx context.Context, rec models.PendingSubscriber) (int64, error) {
	start := time.Now()
	now := r.now()

	var id int64
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO subscribers
		    (email, dog_name, status, confirm_token, consent_timestamp, consent_text,
		     ip_address, source, updated_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		 RETURNING id`,
		rec.Email, nullString(rec.DogName), string(models.StatusPending), rec.ConfirmToken,
		rec.ConsentTimestamp.UTC(), rec.ConsentText, rec.IPAddress, string(rec.Source), now,
	).Scan(&id)
	if err != nil {
		r.fail(ctx, err, "db_insert_error", "failed to insert subscriber")
		return 0, err
	}

	r.log.Info("pending subscriber inserted",
		zap.Int64("id", id),
		zap.String("source", string(rec.Source)),
		zap.Duration("duration", time.Since(start)),
	)
	return id, nil
}

// RegenerateToken replaces the confirm token of a pending subscriber.
func (r *SubscriberRepository) RegenerateToken(ctx context.Context, id int64, newToken string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE subscribers SET confirm_token = $1, updated_at = $2
		 WHERE id = $3 AND status = $4`,
		newToken, r.now(), id, string(models.StatusPending),
	)
	if err != nil {
		r.fail(ctx, err, "db_update_error", "failed to regenerate token")
		return err
	}

	count, err := res.RowsAffected()
	if err != nil {
		r.fail(ctx, err, "db_rows_error", "failed to get rows affected for token update")
		return err
	}
	if count == 0 {
		return ErrNotFound
	}

	r.log.Debug("confirm token regenerated", zap.Int64("id", id))
	return nil
}

// Confirm moves a pending subscriber to confirmed in one statement, clearing the
// token and keeping its hash. It reports false when the row was not pending.
func (r *SubscriberRepository) Confirm(ctx context.Context, id int64, consumedToken string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE subscribers
		 SET status = $1, confirmed_at = $2, confirm_token = NULL,
		     consumed_token_hash = $3, updated_at = $2
		 WHERE id = $4 AND status = $5`,
		string(models.StatusConfirmed), r.now(), token.Hash(consumedToken), id, string(models.StatusPending),
	)
	if err != nil {
		r.fail(ctx, err, "db_update_error", "failed to execute confirm update")
		return false, err
	}

	count, err := res.RowsAffected()
	if err != nil {
		r.fail(ctx, err, "db_rows_error", "failed to get rows affected for confirm")
		return false, err
	}

	r.log.Info("subscriber confirm completed", zap.Int64("id", id), zap.Bool("updated", count > 0))
	return count > 0, nil
}

// ListConfirmed returns confirmed subscribers, most recently confirmed first.
func (r *SubscriberRepository) ListConfirmed(ctx context.Context) ([]models.ConfirmedSubscriber, error) {
	start := time.Now()

	rows, err := r.DB.QueryContext(ctx,
		`SELECT email, dog_name, source, consent_timestamp, confirmed_at
		 FROM subscribers
		 WHERE status = $1
		 ORDER BY confirmed_at DESC, id DESC`,
		string(models.StatusConfirmed),
	)
	if err != nil {
		r.fail(ctx, err, "db_query_error", "failed to query confirmed subscribers")
		return nil, err
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			r.log.Error("failed to close rows", zap.Error(err))
		}
	}(rows)

	var subs []models.ConfirmedSubscriber
	for rows.Next() {
		var (
			sub         models.ConfirmedSubscriber
			dogName     sql.NullString
			source      string
			confirmedAt sql.NullTime
		)
		if err := rows.Scan(&sub.Email, &dogName, &source, &sub.ConsentTimestamp, &confirmedAt); err != nil {
			r.fail(ctx, err, "db_scan_error", "failed to scan confirmed subscriber")
			return nil, err
		}
		sub.DogName = stringPtr(dogName)
		sub.Source = models.Source(source)
		sub.ConfirmedAt = confirmedAt.Time
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		r.fail(ctx, err, "db_rows_error", "row iteration error")
		return nil, err
	}

	r.log.Info("retrieved confirmed subscribers",
		zap.Int("count", len(subs)),
		zap.Duration("duration", time.Since(start)),
	)
	return subs, nil
}

func (r *SubscriberRepository) CountByStatus(ctx context.Context, status models.Status) (int64, error) {
	var count int64
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM subscribers WHERE status = $1`, string(status),
	).Scan(&count)
	if err != nil {
		r.fail(ctx, err, "db_query_error", "failed to count subscribers by status")
		return 0, err
	}
	return count, nil
}

func (r *SubscriberRepository) CountConfirmedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM subscribers WHERE status = $1 AND confirmed_at >= $2`,
		string(models.StatusConfirmed), since.UTC(),
	).Scan(&count)
	if err != nil {
		r.fail(ctx, err, "db_query_error", "failed to count recent confirmations")
		return 0, err
	}
	return count, nil
}

func (r *SubscriberRepository) fail(ctx context.Context, err error, errorType, msg string) {
	if ctx.Err() != nil {
		errorType = "db_context_error"
	}
	r.log.Error(msg, zap.Error(err))
	r.m.Technical(errorType, "critical")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscriber(row rowScanner) (models.Subscriber, error) {
	var (
		sub          models.Subscriber
		dogName      sql.NullString
		status       string
		confirmToken sql.NullString
		source       string
		confirmedAt  sql.NullTime
	)

	err := row.Scan(&sub.ID, &sub.Email, &dogName, &status, &confirmToken, &sub.ConsentTimestamp,
		&sub.ConsentText, &sub.IPAddress, &source, &confirmedAt, &sub.UpdatedAt, &sub.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Subscriber{}, ErrNotFound
	}
	if err != nil {
		return models.Subscriber{}, err
	}

	sub.DogName = stringPtr(dogName)
	sub.Status = models.Status(status)
	sub.ConfirmToken = stringPtr(confirmToken)
	sub.Source = models.Source(source)
	if confirmedAt.Valid {
		t := confirmedAt.Time
		sub.ConfirmedAt = &t
	}
	return sub, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
