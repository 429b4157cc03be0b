//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitreg/internal/sitecontact/models"
	visitmodels "visitreg/internal/visit/models"
	id "visitreg/pkg/domain"
	"visitreg/pkg/platform/sentinel"
	"visitreg/pkg/testutil/containers"
)

func TestPostgresStore_Lifecycle(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	store := NewPostgres(pg.DB)
	ctx := context.Background()

	caretaker := &models.SiteContact{ID: id.SiteContactID(uuid.New()), Name: "Pat", Phone: "0400000000",
		Site: visitmodels.SiteRidgefield, Position: "Caretaker"}
	ranger := &models.SiteContact{ID: id.SiteContactID(uuid.New()), Name: "Alex", Phone: "0400000001",
		Site: visitmodels.SiteGingin, Position: "Ranger"}
	require.NoError(t, store.Save(ctx, caretaker))
	require.NoError(t, store.Save(ctx, ranger))
	assert.ErrorIs(t, store.Save(ctx, caretaker), sentinel.ErrAlreadyUsed)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, visitmodels.SiteGingin, all[0].Site)

	farm, err := store.List(ctx, visitmodels.SiteRidgefield)
	require.NoError(t, err)
	require.Len(t, farm, 1)
	assert.Equal(t, *caretaker, *farm[0])

	require.NoError(t, store.Delete(ctx, caretaker.ID))
	assert.ErrorIs(t, store.Delete(ctx, caretaker.ID), sentinel.ErrNotFound)
}
