package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitreg/internal/platform/config"
	"visitreg/internal/platform/metrics"
	"visitreg/pkg/testutil"
)

const managerPassword = "ridgefield gate"

func newTestApp(t *testing.T, i *infra, tweaks ...func(*config.Server)) *app {
	t.Helper()
	cfg := config.Server{
		JWTSigningKey:            "test-signing-key",
		TokenTTL:                 time.Hour,
		SiteTimezone:             "Australia/Perth",
		BootstrapManagerPassword: managerPassword,
		Redis:                    config.RedisConfig{QueueKey: "visitreg:test:notify"},
	}
	for _, tweak := range tweaks {
		tweak(&cfg)
	}
	loc, err := time.LoadLocation(cfg.SiteTimezone)
	require.NoError(t, err)
	registry := prometheus.NewRegistry()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	a, err := newApp(context.Background(), cfg, i, metrics.NewWithRegisterer(registry), registry, loc, log)
	require.NoError(t, err)
	t.Cleanup(a.audit.Close)
	return a
}

func account(username string) map[string]any {
	return map[string]any{
		"username":             username,
		"password":             "correct horse",
		"first_name":           "Jo",
		"last_name":            username,
		"email":                username + "@example.org",
		"phone":                "0412345678",
		"role":                 "Visitor",
		"contact_name":         "Sam",
		"contact_phone":        "0898765432",
		"contact_relationship": "Partner",
	}
}

func login(t *testing.T, a *app, username, password string) string {
	t.Helper()
	rr := testutil.DoRequest(a.router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/login",
		map[string]string{"username": username, "password": password}))
	testutil.AssertStatus(t, rr, http.StatusOK)
	return testutil.UnmarshalResponse[struct {
		AccessToken string `json:"access_token"`
	}](t, rr).AccessToken
}

func overnightStay(paddock string) map[string]any {
	body := map[string]any{
		"arrival_date":   "2030-03-01",
		"arrival_time":   "09:00",
		"departure_date": "2030-03-03",
		"departure_time": "16:30",
		"overnight":      true,
		"induction":      true,
		"houserules":     true,
	}
	if paddock != "" {
		body["paddock"] = paddock
	}
	return body
}

type visitBody struct {
	VisitID string `json:"visit_id"`
	Site    string `json:"site"`
	Paddock string `json:"paddock"`
	TeamID  string `json:"team_id"`
}

func TestVisitRegistrationEndToEnd(t *testing.T) {
	registrationScenario(t, newTestApp(t, &infra{}))
}

// registrationScenario walks a visitor and a site manager through the API.
// It expects a fresh app.
func registrationScenario(t *testing.T, a *app) {
	var token string

	testutil.Given(t, "two registered visitors", func(t *testing.T) {
		for _, username := range []string{"jdoe", "asmith"} {
			rr := testutil.DoRequest(a.router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/register", account(username)))
			testutil.AssertStatus(t, rr, http.StatusCreated)
		}
		token = login(t, a, "jdoe", "correct horse")
		require.NotEmpty(t, token)
	})

	testutil.When(t, "a visitor books an overnight farm stay", func(t *testing.T) {
		req := testutil.WithBearer(testutil.NewJSONRequest(t, http.MethodPost, "/visits/ridgefield", overnightStay("North")), token)
		rr := testutil.DoRequest(a.router, req)
		testutil.AssertStatus(t, rr, http.StatusCreated)
		visit := testutil.UnmarshalResponse[visitBody](t, rr)
		assert.Equal(t, "ridgefield", visit.Site)
		assert.Equal(t, "North", visit.Paddock)

		testutil.Then(t, "site managers are notified through the queue", func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			job, err := a.queue.Dequeue(ctx)
			require.NoError(t, err)
			assert.Equal(t, visit.VisitID, job.VisitID.String())
			require.NotNil(t, job.Paddock)
			assert.Equal(t, "North", *job.Paddock)
		})
	})

	testutil.When(t, "the paddock is missing", func(t *testing.T) {
		req := testutil.WithBearer(testutil.NewJSONRequest(t, http.MethodPost, "/visits/ridgefield", overnightStay("")), token)
		rr := testutil.DoRequest(a.router, req)

		testutil.Then(t, "the visit is rejected field by field", func(t *testing.T) {
			body := testutil.AssertStatusAndError(t, rr, http.StatusUnprocessableEntity, "invalid_visit")
			assert.True(t, body.Fields.Has("paddock"))
		})
	})

	testutil.When(t, "a team leader registers a colleague", func(t *testing.T) {
		team := map[string]any{
			"arrival_date":   "2030-04-10",
			"arrival_time":   "08:00",
			"departure_date": "2030-04-10",
			"departure_time": "17:00",
			"members":        []map[string]any{{"username": "asmith"}},
		}
		req := testutil.WithBearer(testutil.NewJSONRequest(t, http.MethodPost, "/visits/gingin/team", team), token)
		rr := testutil.DoRequest(a.router, req)

		testutil.Then(t, "both share a team id", func(t *testing.T) {
			testutil.AssertStatus(t, rr, http.StatusCreated)
			out := testutil.UnmarshalResponse[struct {
				TeamID string      `json:"team_id"`
				Visits []visitBody `json:"visits"`
			}](t, rr)
			require.Len(t, out.Visits, 2)
			for _, v := range out.Visits {
				assert.Equal(t, out.TeamID, v.TeamID)
				assert.Equal(t, "gingin", v.Site)
			}
		})
	})

	testutil.When(t, "the visitor asks for a site roster", func(t *testing.T) {
		req := testutil.WithBearer(testutil.NewJSONRequest(t, http.MethodGet, "/manage/ridgefield/visits", nil), token)
		rr := testutil.DoRequest(a.router, req)

		testutil.Then(t, "access is forbidden", func(t *testing.T) {
			testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")
		})
	})

	testutil.When(t, "the site manager asks for the roster", func(t *testing.T) {
		managerToken := login(t, a, "ridgefield-manager", managerPassword)
		req := testutil.WithBearer(testutil.NewJSONRequest(t, http.MethodGet, "/manage/ridgefield/visits", nil), managerToken)
		rr := testutil.DoRequest(a.router, req)

		testutil.Then(t, "only that site's visits are listed", func(t *testing.T) {
			testutil.AssertStatus(t, rr, http.StatusOK)
			roster := testutil.UnmarshalResponse[[]visitBody](t, rr)
			require.Len(t, roster, 1)
			assert.Equal(t, "ridgefield", roster[0].Site)
		})
	})
}

func TestHealthzWithoutInfra(t *testing.T) {
	a := newTestApp(t, &infra{})
	rr := testutil.DoRequest(a.router, testutil.NewJSONRequest(t, http.MethodGet, "/healthz", nil))
	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.Equal(t, "ok", testutil.UnmarshalResponse[map[string]any](t, rr)["status"])
}

func TestNewSendersFallsBackToLog(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	senders := newSenders(context.Background(), config.Server{}, &infra{}, log)
	require.Len(t, senders, 1)
	assert.Equal(t, "log", senders[0].Name())
}

func TestLoginLockoutAndRequestLimit(t *testing.T) {
	a := newTestApp(t, &infra{}, func(cfg *config.Server) {
		cfg.RateLimit = config.RateLimitConfig{
			RequestsPerMinute: 8,
			LoginAttempts:     2,
			LoginWindow:       time.Minute,
			LockDuration:      time.Minute,
		}
	})
	attempt := func(password, forwardedFor string) *httptest.ResponseRecorder {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/login",
			map[string]string{"username": "ridgefield-manager", "password": password})
		req.Header.Set("X-Forwarded-For", forwardedFor)
		return testutil.DoRequest(a.router, req)
	}

	testutil.Given(t, "two wrong passwords sent with different forwarded addresses", func(t *testing.T) {
		for _, spoofed := range []string{"198.51.100.1", "198.51.100.2"} {
			testutil.AssertStatusAndError(t, attempt("guess", spoofed), http.StatusUnauthorized, "unauthorized")
		}

		testutil.Then(t, "even the right password is refused for a while", func(t *testing.T) {
			rr := attempt(managerPassword, "198.51.100.3")
			testutil.AssertStatusAndError(t, rr, http.StatusTooManyRequests, "rate_limited")
			assert.NotEmpty(t, rr.Header().Get("Retry-After"))
		})
	})

	testutil.When(t, "the address keeps calling", func(t *testing.T) {
		var last *httptest.ResponseRecorder
		for range 6 {
			last = testutil.DoRequest(a.router, testutil.NewJSONRequest(t, http.MethodGet, "/sites", nil))
		}

		testutil.Then(t, "requests past the per-minute budget get 429", func(t *testing.T) {
			testutil.AssertStatusAndError(t, last, http.StatusTooManyRequests, "rate_limited")
			assert.Equal(t, "0", last.Header().Get("X-RateLimit-Remaining"))
		})

		testutil.Then(t, "health checks are never limited", func(t *testing.T) {
			rr := testutil.DoRequest(a.router, testutil.NewJSONRequest(t, http.MethodGet, "/healthz", nil))
			testutil.AssertStatus(t, rr, http.StatusOK)
		})
	})
}
