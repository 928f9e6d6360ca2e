package metrics_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/Nazarious-ucu/waitlist-api/internal/metrics"
)

func TestHTTPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := metrics.NewMetrics("test", nil, "")

	r := gin.New()
	r.Use(m.HTTPMiddleware())
	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "OK") })

	for _, path := range []string{"/health", "/health", "/missing"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.InDelta(t, 2, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/health", "2xx")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "4xx")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.HTTPRequestsInFlight), 0)
}

func TestRecordEmail(t *testing.T) {
	m := metrics.NewMetrics("test", nil, "")

	m.RecordEmail("resend", nil)
	m.RecordEmail("resend", errors.New("boom"))
	m.RecordEmail("resend", nil)

	assert.InDelta(t, 2, testutil.ToFloat64(m.EmailsSent.WithLabelValues("resend", "ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.EmailsSent.WithLabelValues("resend", "error")), 0)
}

func TestCronJob(t *testing.T) {
	m := metrics.NewMetrics("test", nil, "")

	ran := false
	m.CronJob("refresh", func() { ran = true })

	assert.True(t, ran)
	assert.InDelta(t, 1, testutil.ToFloat64(m.CronRuns.WithLabelValues("refresh")), 0)
}

func TestHandler(t *testing.T) {
	m := metrics.NewMetrics("waitlist", nil, "")
	m.HoneypotHits.Inc()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "waitlist_honeypot_hits_total 1")
}
