package metrics

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const divisor = 100

// Metrics defines all Prometheus metrics for the waitlist service.
type Metrics struct {
	Registry *prometheus.Registry

	// RED (Rate, Errors, Duration) for HTTP
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestsInFlight prometheus.Gauge
	HTTPRequestDuration  *prometheus.HistogramVec

	// Business metrics
	SubscriptionsCreated   *prometheus.CounterVec // by source
	SubscriptionsResent    prometheus.Counter
	SubscriptionsConfirmed prometheus.Counter
	HoneypotHits           prometheus.Counter
	Subscribers            *prometheus.GaugeVec // by status

	// Email provider
	EmailsSent *prometheus.CounterVec // by provider, result

	// Stats cache
	CacheRequests *prometheus.CounterVec // by operation, result

	// Cron job metrics
	CronRuns        *prometheus.CounterVec // by job
	CronRunDuration *prometheus.HistogramVec

	ServiceUptime prometheus.Gauge

	BusinessErrors  *prometheus.CounterVec
	TechnicalErrors *prometheus.CounterVec
}

// NewMetrics creates all metrics on a fresh registry under the given namespace.
// db may be nil, in which case connection pool stats are not collected.
func NewMetrics(namespace string, db *sql.DB, dbName string) *Metrics {
	registry := prometheus.NewRegistry()
	errorLabels := []string{"error_type", "severity"}
	m := &Metrics{
		Registry: registry,

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests total",
			},
			[]string{"method", "endpoint", "status_class"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "In-flight HTTP requests",
			},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		SubscriptionsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "subscriptions_created_total",
				Help:      "New pending subscribers",
			},
			[]string{"source"},
		),
		SubscriptionsResent: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "subscriptions_resent_total",
				Help:      "Confirmation emails re-sent to pending subscribers",
			},
		),
		SubscriptionsConfirmed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "subscriptions_confirmed_total",
				Help:      "Subscribers confirmed",
			},
		),
		HoneypotHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "honeypot_hits_total",
				Help:      "Submissions absorbed by the honeypot field",
			},
		),
		Subscribers: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "subscribers",
				Help:      "Subscribers by status",
			},
			[]string{"status"},
		),

		EmailsSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "emails_sent_total",
				Help:      "Confirmation emails handed to the provider",
			},
			[]string{"provider", "result"},
		),

		CacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_requests_total",
				Help:      "Stats cache operations",
			},
			[]string{"operation", "result"},
		),

		CronRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cron_runs_total",
				Help:      "Cron job executions",
			},
			[]string{"job"},
		),
		CronRunDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "cron_run_duration_seconds",
				Help:      "Duration of cron jobs",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"job"},
		),

		ServiceUptime: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "service_start_time_seconds",
				Help:      "Unix time the service started",
			},
		),

		BusinessErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "business_errors_total",
				Help:      "Total business errors",
			},
			errorLabels,
		),
		TechnicalErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "technical_errors_total",
				Help:      "Total technical errors",
			},
			errorLabels,
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestsInFlight,
		m.HTTPRequestDuration,
		m.SubscriptionsCreated,
		m.SubscriptionsResent,
		m.SubscriptionsConfirmed,
		m.HoneypotHits,
		m.Subscribers,
		m.EmailsSent,
		m.CacheRequests,
		m.CronRuns,
		m.CronRunDuration,
		m.ServiceUptime,
		m.BusinessErrors,
		m.TechnicalErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if db != nil {
		registry.MustRegister(collectors.NewDBStatsCollector(db, dbName))
	}

	m.ServiceUptime.SetToCurrentTime()

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// HTTPMiddleware instruments Gin HTTP handlers for RED metrics.
func (m *Metrics) HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.HTTPRequestsInFlight.Inc()
		c.Next()
		m.HTTPRequestsInFlight.Dec()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		dur := time.Since(start).Seconds()
		statusClass := fmt.Sprintf("%dxx", c.Writer.Status()/divisor)

		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, endpoint, statusClass).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(dur)
	}
}

// CronJob wraps a function with cron metrics (runs + duration).
func (m *Metrics) CronJob(job string, fn func()) {
	start := time.Now()
	m.CronRuns.WithLabelValues(job).Inc()
	fn()
	m.CronRunDuration.WithLabelValues(job).Observe(time.Since(start).Seconds())
}

// RecordEmail counts a provider send attempt as "ok" or "error".
func (m *Metrics) RecordEmail(provider string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.EmailsSent.WithLabelValues(provider, result).Inc()
}

// RecordCache counts a cache operation; result is "hit", "miss", "ok" or "error".
func (m *Metrics) RecordCache(operation, result string) {
	m.CacheRequests.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) Business(errorType, severity string) {
	m.BusinessErrors.WithLabelValues(errorType, severity).Inc()
}

func (m *Metrics) Technical(errorType, severity string) {
	m.TechnicalErrors.WithLabelValues(errorType, severity).Inc()
}
