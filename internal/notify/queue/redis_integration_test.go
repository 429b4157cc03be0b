//go:build integration

package queue

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitreg/internal/notify/models"
	visitmodels "visitreg/internal/visit/models"
	id "visitreg/pkg/domain"
	"visitreg/pkg/testutil/containers"
)

func TestRedisQueue_AgainstRedis(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	require.NoError(t, rc.FlushAll(ctx))

	q := NewRedisQueue(rc.Client, "visitreg:notify", WithPollTimeout(100*time.Millisecond))
	first := &models.Job{VisitID: id.VisitID(uuid.New()), Site: visitmodels.SiteGingin, VisitorName: "Jo Doe"}
	second := &models.Job{VisitID: id.VisitID(uuid.New()), Site: visitmodels.SiteRidgefield, VisitorName: "Al Smith"}
	require.NoError(t, q.Enqueue(ctx, first))
	require.NoError(t, q.Enqueue(ctx, second))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.VisitID, got.VisitID)
	got, err = q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.VisitID, got.VisitID)

	cctx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	_, err = q.Dequeue(cctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
