package lockout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitreg/internal/ratelimit/models"
	"visitreg/pkg/platform/sentinel"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	key := models.LockoutKey("jdoe", "10.0.0.1")

	_, err := store.Get(ctx, key)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	record := &models.Lockout{Key: key, Failures: 2}
	record.Lock(time.Date(2022, 12, 27, 9, 15, 0, 0, time.UTC))
	require.NoError(t, store.Save(ctx, record))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, record, got)

	*got.LockedUntil = time.Time{}
	again, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, again.LockedUntil.IsZero(), "Get returns copies")

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Get(ctx, key)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
