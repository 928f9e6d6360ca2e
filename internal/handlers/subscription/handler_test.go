package subscription_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Nazarious-ucu/waitlist-api/internal/handlers/subscription"
	"github.com/Nazarious-ucu/waitlist-api/internal/models"
	"github.com/Nazarious-ucu/waitlist-api/internal/services/subscriptions"
)

type mockService struct {
	outcome    subscriptions.Outcome
	subErr     error
	gotReq     models.SubscribeRequest
	gotIP      string
	result     subscriptions.ConfirmResult
	confirmErr error
	gotToken   string
}

func (m *mockService) Subscribe(_ context.Context, req models.SubscribeRequest, ip string) (subscriptions.Outcome, error) {
	m.gotReq = req
	m.gotIP = ip
	return m.outcome, m.subErr
}

func (m *mockService) Confirm(_ context.Context, token string) (subscriptions.ConfirmResult, error) {
	m.gotToken = token
	return m.result, m.confirmErr
}

func setupRouter(svc *mockService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.TrustedPlatform = gin.PlatformCloudflare

	h := subscription.NewHandler(svc, "https://go-rocco.com/thank-you.html", zap.NewNop())
	r.POST("/api/subscribe", h.Subscribe)
	r.GET("/confirm", h.Confirm)

	return r
}

func TestSubscribeEndpoint(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		outcome  subscriptions.Outcome
		mockErr  error
		wantCode int
		wantBody string
	}{
		{
			name:     "created",
			body:     `{"email":"a@b.com","consent":true}`,
			outcome:  subscriptions.OutcomeCreated,
			wantCode: http.StatusOK,
			wantBody: `{"success":true,"message":"Woof! Check your inbox for a confirmation email. Not there? It might be playing hide & seek in your spam folder 🐕"}`,
		},
		{
			name:     "resent",
			body:     `{"email":"a@b.com","consent":true}`,
			outcome:  subscriptions.OutcomeResent,
			wantCode: http.StatusOK,
			wantBody: `{"success":true,"message":"We've sent another confirmation email. Check your inbox — and if it's not there, our email might be having a nap in your spam folder 😴"}`,
		},
		{
			name:     "honeypot",
			body:     `{"email":"a@b.com","consent":true,"honeypot":"x"}`,
			outcome:  subscriptions.OutcomeIgnored,
			wantCode: http.StatusOK,
			wantBody: `{"success":true}`,
		},
		{
			name:     "missing fields",
			body:     `{"email":""}`,
			mockErr:  subscriptions.ErrMissingFields,
			wantCode: http.StatusBadRequest,
			wantBody: `{"error":"Email and consent are required"}`,
		},
		{
			name:     "invalid email",
			body:     `{"email":"nope","consent":true}`,
			mockErr:  subscriptions.ErrInvalidEmail,
			wantCode: http.StatusBadRequest,
			wantBody: `{"error":"Please enter a valid email address"}`,
		},
		{
			name:     "already confirmed",
			body:     `{"email":"a@b.com","consent":true}`,
			mockErr:  subscriptions.ErrAlreadySubscribed,
			wantCode: http.StatusConflict,
			wantBody: `{"error":"This email is already on our list! Check your inbox (or the spam folder where our emails like to hide 🙈) for updates."}`,
		},
		{
			name:     "service error",
			body:     `{"email":"a@b.com","consent":true}`,
			mockErr:  errors.New("db down"),
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"Something went wrong. Please try again."}`,
		},
		{
			name:     "honeypot with wrongly typed fields",
			body:     `{"email":123,"consent":"yes","honeypot":"x"}`,
			outcome:  subscriptions.OutcomeIgnored,
			wantCode: http.StatusOK,
			wantBody: `{"success":true}`,
		},
		{
			name:     "wrongly typed fields",
			body:     `{"email":123,"consent":true}`,
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"Something went wrong. Please try again."}`,
		},
		{
			name:     "malformed json",
			body:     `{"email":`,
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"Something went wrong. Please try again."}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockService{outcome: tc.outcome, subErr: tc.mockErr}
			router := setupRouter(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/subscribe", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tc.wantCode, w.Code)
			assert.JSONEq(t, tc.wantBody, w.Body.String())
		})
	}
}

func TestSubscribe_PassesRequestAndIP(t *testing.T) {
	svc := &mockService{outcome: subscriptions.OutcomeCreated}
	router := setupRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/subscribe",
		strings.NewReader(`{"email":"a@b.com","dogName":"Rocco","consent":"yes","source":"beta","honeypot":0}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("CF-Connecting-IP", "203.0.113.9")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "203.0.113.9", svc.gotIP)
	assert.Equal(t, "a@b.com", svc.gotReq.Email)
	assert.Equal(t, "Rocco", *svc.gotReq.DogName)
	assert.True(t, bool(svc.gotReq.Consent))
	assert.False(t, bool(svc.gotReq.Honeypot))
	assert.Equal(t, "beta", svc.gotReq.Source)
}

func TestConfirmEndpoint(t *testing.T) {
	cases := []struct {
		name     string
		query    string
		result   subscriptions.ConfirmResult
		mockErr  error
		wantLink string
	}{
		{
			name:     "success",
			query:    "?token=abc",
			result:   subscriptions.ConfirmSuccess,
			wantLink: "https://go-rocco.com/thank-you.html?status=success",
		},
		{
			name:     "already",
			query:    "?token=abc",
			result:   subscriptions.ConfirmAlready,
			wantLink: "https://go-rocco.com/thank-you.html?status=already",
		},
		{
			name:     "missing token",
			query:    "",
			result:   subscriptions.ConfirmInvalid,
			wantLink: "https://go-rocco.com/thank-you.html?status=invalid",
		},
		{
			name:     "store failure",
			query:    "?token=abc",
			mockErr:  errors.New("db down"),
			wantLink: "https://go-rocco.com/thank-you.html?status=error",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockService{result: tc.result, confirmErr: tc.mockErr}
			router := setupRouter(svc)

			req := httptest.NewRequest(http.MethodGet, "/confirm"+tc.query, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, tc.wantLink, w.Header().Get("Location"))
		})
	}
}

func TestSubscribe_HoneypotBeforeStrictDecode(t *testing.T) {
	svc := &mockService{outcome: subscriptions.OutcomeIgnored}
	router := setupRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/subscribe", strings.NewReader(`{"email":123,"honeypot":1}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.SubscribeRequest{Honeypot: true}, svc.gotReq)
}
