//go:build integration

package main

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitreg/internal/platform/config"
	"visitreg/internal/platform/redis"
	"visitreg/pkg/testutil"
	"visitreg/pkg/testutil/containers"
)

func TestVisitRegistrationAgainstPostgresAndRedis(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	rc := containers.NewRedisContainer(t)

	client, err := redis.New(context.Background(), config.RedisConfig{URL: rc.URL})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	i := &infra{db: pg.DB, redis: client}
	a := newTestApp(t, i)
	registrationScenario(t, a)

	rr := testutil.DoRequest(a.router, testutil.NewJSONRequest(t, http.MethodGet, "/healthz", nil))
	testutil.AssertStatus(t, rr, http.StatusOK)
	checks := testutil.UnmarshalResponse[struct {
		Checks map[string]string `json:"checks"`
	}](t, rr).Checks
	assert.Equal(t, "ok", checks["postgres"])
	assert.Equal(t, "ok", checks["redis"])
}
