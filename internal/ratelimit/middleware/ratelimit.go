// Package middleware enforces the per-IP request limit on HTTP routes.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"visitreg/internal/ratelimit/models"
	dErrors "visitreg/pkg/domain-errors"
	"visitreg/pkg/platform/httputil"
	"visitreg/pkg/requestcontext"
)

type IPLimiter interface {
	CheckIP(ctx context.Context, ip string) (*models.Result, error)
}

// RateLimit refuses requests over the client IP's budget with 429. A
// failing limiter lets traffic through. It relies on the client metadata
// middleware having run first.
func RateLimit(limiter IPLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)

			result, err := limiter.CheckIP(ctx, ip)
			if err != nil {
				logger.ErrorContext(ctx, "failed to check IP rate limit",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)
			if !result.Allowed {
				logger.InfoContext(ctx, "request rate limited",
					"client_ip", ip,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.RateLimited("too many requests from this address, try again later", result.RetryAfter))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}
