package admin_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Nazarious-ucu/waitlist-api/internal/handlers/admin"
	"github.com/Nazarious-ucu/waitlist-api/internal/models"
)

type mockService struct {
	subs      []models.ConfirmedSubscriber
	exportErr error
	stats     models.Stats
	statsErr  error
}

func (m *mockService) Export(context.Context) ([]models.ConfirmedSubscriber, error) {
	return m.subs, m.exportErr
}

func (m *mockService) Stats(context.Context) (models.Stats, error) {
	return m.stats, m.statsErr
}

func setupRouter(svc *mockService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	h := admin.NewHandler(svc, svc, "gorocco", zap.NewNop())
	r.GET("/admin/export", h.Export)
	r.GET("/admin/stats", h.Stats)

	return r
}

func strPtr(s string) *string { return &s }

func TestFormatCSV(t *testing.T) {
	consent := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	confirmed := time.Date(2025, 5, 1, 9, 5, 30, 0, time.UTC)

	got := admin.FormatCSV([]models.ConfirmedSubscriber{
		{Email: "a@b.com", DogName: strPtr(`Max "the dog"`), Source: models.SourceBeta,
			ConsentTimestamp: consent, ConfirmedAt: confirmed},
		{Email: "c@d.com", Source: models.SourceWebsite,
			ConsentTimestamp: consent, ConfirmedAt: confirmed},
	})

	want := "Email,Dog Name,Source,Consent Date,Confirmed Date\n" +
		`"a@b.com","Max ""the dog""","beta","2025-05-01 09:00:00","2025-05-01 09:05:30"` + "\n" +
		`"c@d.com","","website","2025-05-01 09:00:00","2025-05-01 09:05:30"`
	assert.Equal(t, want, got)
}

func TestFormatCSV_Empty(t *testing.T) {
	assert.Equal(t, "Email,Dog Name,Source,Consent Date,Confirmed Date", admin.FormatCSV(nil))
}

func TestExportEndpoint(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		now := time.Now().UTC()
		svc := &mockService{subs: []models.ConfirmedSubscriber{
			{Email: "a@b.com", Source: models.SourceWebsite, ConsentTimestamp: now, ConfirmedAt: now},
		}}
		router := setupRouter(svc)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/export", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Regexp(t, regexp.MustCompile(`^attachment; filename="gorocco-subscribers-\d{4}-\d{2}-\d{2}\.csv"$`),
			w.Header().Get("Content-Disposition"))
		assert.Contains(t, w.Body.String(), `"a@b.com","","website"`)
	})

	t.Run("failure", func(t *testing.T) {
		router := setupRouter(&mockService{exportErr: errors.New("db down")})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/export", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Export failed", w.Body.String())
	})
}

func TestStatsEndpoint(t *testing.T) {
	cases := []struct {
		name     string
		svc      *mockService
		wantCode int
		wantBody string
	}{
		{
			name:     "success",
			svc:      &mockService{stats: models.Stats{Pending: 4, Confirmed: 10, ConfirmedToday: 2}},
			wantCode: http.StatusOK,
			wantBody: `{"pending":4,"confirmed":10,"confirmedToday":2}`,
		},
		{
			name:     "failure",
			svc:      &mockService{statsErr: errors.New("db down")},
			wantCode: http.StatusInternalServerError,
			wantBody: "Stats failed",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := setupRouter(tc.svc)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))

			assert.Equal(t, tc.wantCode, w.Code)
			if tc.wantCode == http.StatusOK {
				assert.JSONEq(t, tc.wantBody, w.Body.String())
			} else {
				assert.Equal(t, tc.wantBody, w.Body.String())
			}
		})
	}
}
