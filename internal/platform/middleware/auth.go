package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	id "visitreg/pkg/domain"
	"visitreg/pkg/requestcontext"
)

// JWTValidator defines the interface for validating JWT tokens
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims we expect from the JWT validator
type JWTClaims struct {
	IdentityID string
	Username   string
	Staff      bool
	Groups     []string
}

type contextKeyUsername struct{}
type contextKeyStaff struct{}
type contextKeyGroups struct{}

var (
	ContextKeyUsername = contextKeyUsername{}
	ContextKeyStaff    = contextKeyStaff{}
	ContextKeyGroups   = contextKeyGroups{}
)

// GetIdentityID retrieves the authenticated identity from the context.
func GetIdentityID(ctx context.Context) id.IdentityID {
	return requestcontext.IdentityID(ctx)
}

func GetUsername(ctx context.Context) string {
	username, ok := ctx.Value(ContextKeyUsername).(string)
	if !ok {
		return ""
	}
	return username
}

func IsStaff(ctx context.Context) bool {
	staff, _ := ctx.Value(ContextKeyStaff).(bool)
	return staff
}

func GetGroups(ctx context.Context) []string {
	groups, _ := ctx.Value(ContextKeyGroups).([]string)
	return groups
}

// WithClaims injects authenticated claims into a context.
// Handler tests use it to skip the token round trip.
func WithClaims(ctx context.Context, identityID id.IdentityID, username string, staff bool, groups []string) context.Context {
	ctx = requestcontext.WithIdentityID(ctx, identityID)
	ctx = context.WithValue(ctx, ContextKeyUsername, username)
	ctx = context.WithValue(ctx, ContextKeyStaff, staff)
	return context.WithValue(ctx, ContextKeyGroups, groups)
}

func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", GetRequestID(ctx),
				)
				writeJSONError(ctx, w, logger, http.StatusUnauthorized,
					`{"error":"unauthorized","error_description":"Missing or invalid Authorization header"}`)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				writeJSONError(ctx, w, logger, http.StatusUnauthorized,
					`{"error":"unauthorized","error_description":"Invalid or expired token"}`)
				return
			}

			identityID, err := id.ParseIdentityID(claims.IdentityID)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - malformed subject",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				writeJSONError(ctx, w, logger, http.StatusUnauthorized,
					`{"error":"unauthorized","error_description":"Invalid or expired token"}`)
				return
			}

			ctx = WithClaims(ctx, identityID, claims.Username, claims.Staff, claims.Groups)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireGroup admits staff members of group. Must run after RequireAuth.
func RequireGroup(group func(r *http.Request) string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			want := group(r)
			if !IsStaff(ctx) || !slices.Contains(GetGroups(ctx), want) {
				logger.WarnContext(ctx, "forbidden - not a site manager",
					"group", want,
					"username", GetUsername(ctx),
					"request_id", GetRequestID(ctx),
				)
				writeJSONError(ctx, w, logger, http.StatusForbidden,
					`{"error":"forbidden","error_description":"site manager access required"}`)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireStaff admits any staff account. Must run after RequireAuth.
func RequireStaff(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if !IsStaff(ctx) {
				logger.WarnContext(ctx, "forbidden - staff only",
					"username", GetUsername(ctx),
					"request_id", GetRequestID(ctx),
				)
				writeJSONError(ctx, w, logger, http.StatusForbidden,
					`{"error":"forbidden","error_description":"staff access required"}`)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSONError(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		logger.ErrorContext(ctx, "failed to write error response",
			"error", err,
			"request_id", GetRequestID(ctx),
		)
	}
}
