package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	rediscache "github.com/Nazarious-ucu/waitlist-api/internal/cache"
	"github.com/Nazarious-ucu/waitlist-api/internal/config"
	"github.com/Nazarious-ucu/waitlist-api/internal/db"
	"github.com/Nazarious-ucu/waitlist-api/internal/emailer"
	"github.com/Nazarious-ucu/waitlist-api/internal/handlers/admin"
	"github.com/Nazarious-ucu/waitlist-api/internal/handlers/subscription"
	"github.com/Nazarious-ucu/waitlist-api/internal/metrics"
	"github.com/Nazarious-ucu/waitlist-api/internal/models"
	"github.com/Nazarious-ucu/waitlist-api/internal/refresher"
	"github.com/Nazarious-ucu/waitlist-api/internal/repository"
	"github.com/Nazarious-ucu/waitlist-api/internal/services/cache"
	"github.com/Nazarious-ucu/waitlist-api/internal/services/email"
	"github.com/Nazarious-ucu/waitlist-api/internal/services/logger"
	"github.com/Nazarious-ucu/waitlist-api/internal/services/subscriptions"
)

const (
	timeoutDuration = 5 * time.Second

	metricsNamespace = "waitlist"
)

type statsProvider interface {
	Stats(ctx context.Context) (models.Stats, error)
}

type App struct {
	cfg config.Config
	log *zap.Logger
}

type ServiceContainer struct {
	SubscriptionService *subscriptions.Service
	EmailService        *email.Service
	SubRepository       *repository.SubscriberRepository
	Refresher           *refresher.Refresher
	Metrics             *metrics.Metrics

	Router *gin.Engine
	Srv    *http.Server
	Db     *sql.DB
	Redis  *redis.Client
}

func New(cfg config.Config, logger *zap.Logger) *App {
	return &App{
		cfg: cfg,
		log: logger,
	}
}

// Init opens the store, applies migrations and builds every component.
func (a *App) Init(ctx context.Context) (ServiceContainer, error) {
	a.log.Info("initializing application",
		zap.String("address", a.cfg.ServerAddress()),
		zap.String("db_dialect", a.cfg.DB.Dialect),
		zap.String("email_provider", a.cfg.Email.Provider),
	)

	conn, err := db.Open(ctx, a.cfg.DB.Dialect, a.cfg.DB.Source)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(conn, a.cfg.DB.Dialect); err != nil {
		_ = conn.Close()
		return ServiceContainer{}, fmt.Errorf("migrate database: %w", err)
	}

	sender, err := NewSender(a.cfg.Email, a.log)
	if err != nil {
		_ = conn.Close()
		return ServiceContainer{}, err
	}

	var rdb *redis.Client
	if a.cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			a.log.Warn("redis unavailable, stats cache reads will fall through", zap.Error(err))
		}
	}

	m := metrics.NewMetrics(metricsNamespace, conn, a.cfg.DB.Dialect)
	return NewServiceContainer(&a.cfg, conn, sender, rdb, m, a.log)
}

// NewSender picks the configured provider and puts it behind a circuit breaker.
// Outbound calls are logged through the RoundTripper.
func NewSender(cfg config.Email, log *zap.Logger) (email.Sender, error) {
	client := &http.Client{
		Transport: logger.NewRoundTripper(log),
		Timeout:   cfg.Timeout,
	}

	var provider email.Sender
	switch cfg.Provider {
	case emailer.ProviderResend:
		c, err := emailer.NewResendClient(cfg.ResendAPIKey, cfg.ResendURL, client, log)
		if err != nil {
			return nil, err
		}
		provider = c
	case emailer.ProviderPostmark:
		c, err := emailer.NewPostmarkClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken, client, log)
		if err != nil {
			return nil, err
		}
		provider = c
	default:
		return nil, fmt.Errorf("%w: unknown EMAIL_PROVIDER %q", emailer.ErrInvalidConfig, cfg.Provider)
	}

	return emailer.NewBreakerSender(provider), nil
}

// NewServiceContainer builds services, handlers and the HTTP server on top
// of an open store. rdb may be nil, which disables the stats cache.
func NewServiceContainer(
	cfg *config.Config,
	conn *sql.DB,
	sender email.Sender,
	rdb *redis.Client,
	m *metrics.Metrics,
	log *zap.Logger,
) (ServiceContainer, error) {
	subRepository := repository.NewSubscriberRepository(conn, log, m)

	emailService, err := email.NewService(sender, email.Options{
		Brand:      cfg.Site.BrandName,
		FromName:   cfg.Email.FromName,
		FromEmail:  cfg.Email.FromEmail,
		ConfirmURL: cfg.Site.ConfirmURL,
		SiteURL:    cfg.Site.URL,
		PrivacyURL: cfg.Site.PrivacyURL(),
	}, log, m)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("email service: %w", err)
	}

	subService := subscriptions.NewService(subRepository, emailService, cfg.ConsentText, log, m)

	var stats statsProvider = subService
	if rdb != nil {
		cached := cache.NewStatsDecorator(
			subService,
			rediscache.NewRedisClient[models.Stats](rdb, log),
			cfg.Redis.StatsTTL,
			log,
			m,
		)
		subService.WithStatsInvalidator(cached)
		stats = cached
	}

	router := NewRouter(cfg, Handlers{
		Subscription: subscription.NewHandler(subService, cfg.Site.ThankYouURL(), log),
		Admin:        admin.NewHandler(subService, stats, cfg.Site.ExportPrefix, log),
	}, m, log)

	return ServiceContainer{
		SubscriptionService: subService,
		EmailService:        emailService,
		SubRepository:       subRepository,
		Refresher:           refresher.New(subRepository, log, cfg.StatsRefreshSchedule, m),
		Metrics:             m,

		Router: router,
		Srv: &http.Server{
			Addr:              cfg.ServerAddress(),
			Handler:           router,
			ReadTimeout:       time.Duration(cfg.Server.ReadTimeout) * time.Second,
			ReadHeaderTimeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
		},
		Db:    conn,
		Redis: rdb,
	}, nil
}

// Start serves until ctx is cancelled or the server fails, then shuts down.
func (a *App) Start(ctx context.Context, srvContainer ServiceContainer) error {
	if err := srvContainer.Refresher.Start(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("starting server", zap.String("address", srvContainer.Srv.Addr))
		if err := srvContainer.Srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
	case serveErr = <-errCh:
		a.log.Error("server stopped unexpectedly", zap.Error(serveErr))
	}

	if err := a.Stop(srvContainer); err != nil {
		return errors.Join(serveErr, err)
	}
	return serveErr
}

func (a *App) Stop(srvContainer ServiceContainer) error {
	a.log.Info("stopping application")

	srvContainer.Refresher.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), timeoutDuration)
	defer cancel()

	var errs []error
	if err := srvContainer.Srv.Shutdown(ctx); err != nil {
		a.log.Error("HTTP shutdown error", zap.Error(err))
		errs = append(errs, err)
	} else {
		a.log.Info("HTTP server stopped")
	}

	if srvContainer.Redis != nil {
		if err := srvContainer.Redis.Close(); err != nil {
			a.log.Error("redis close error", zap.Error(err))
			errs = append(errs, err)
		}
	}

	if err := srvContainer.Db.Close(); err != nil {
		a.log.Error("DB close error", zap.Error(err))
		errs = append(errs, err)
	} else {
		a.log.Info("database closed")
	}

	a.log.Info("shutdown complete")
	return errors.Join(errs...)
}
