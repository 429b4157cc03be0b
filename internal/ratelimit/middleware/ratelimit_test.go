package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"visitreg/internal/ratelimit/models"
	"visitreg/pkg/requestcontext"
)

type stubLimiter struct {
	result *models.Result
	err    error
	gotIP  string
}

func (s *stubLimiter) CheckIP(_ context.Context, ip string) (*models.Result, error) {
	s.gotIP = ip
	return s.result, s.err
}

func serve(limiter IPLimiter) (*httptest.ResponseRecorder, bool) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	})
	h := RateLimit(limiter, slog.New(slog.NewTextHandler(io.Discard, nil)))(next)

	req := httptest.NewRequest(http.MethodGet, "/sites", nil)
	req = req.WithContext(requestcontext.WithClientMetadata(req.Context(), "10.0.0.9", "curl/8.0"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr, called
}

func TestRateLimit(t *testing.T) {
	reset := time.Date(2022, 12, 27, 9, 1, 0, 0, time.UTC)

	t.Run("allowed request carries headers", func(t *testing.T) {
		limiter := &stubLimiter{result: &models.Result{Allowed: true, Limit: 60, Remaining: 12, ResetAt: reset}}
		rr, called := serve(limiter)
		assert.True(t, called)
		assert.Equal(t, "10.0.0.9", limiter.gotIP)
		assert.Equal(t, "60", rr.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "12", rr.Header().Get("X-RateLimit-Remaining"))
		assert.Equal(t, "1672131660", rr.Header().Get("X-RateLimit-Reset"))
	})

	t.Run("refused request gets 429", func(t *testing.T) {
		rr, called := serve(&stubLimiter{result: &models.Result{Allowed: false, Limit: 60, ResetAt: reset, RetryAfter: 30}})
		assert.False(t, called)
		assert.Equal(t, http.StatusTooManyRequests, rr.Code)
		assert.Equal(t, "30", rr.Header().Get("Retry-After"))
		assert.Contains(t, rr.Body.String(), `"error":"rate_limited"`)
	})

	t.Run("limiter failure lets traffic through", func(t *testing.T) {
		rr, called := serve(&stubLimiter{err: errors.New("redis down")})
		assert.True(t, called)
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})
}
