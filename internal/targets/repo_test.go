package targets

import (
	"context"
	"fmt"
	"testing"

	"github.com/courierlabs/robocourier-backend/pkg/config"
	"github.com/courierlabs/robocourier-backend/pkg/db"
	"github.com/courierlabs/robocourier-backend/pkg/db/models"
	"github.com/courierlabs/robocourier-backend/pkg/migrate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	ctx := context.Background()

	client, err := db.New(ctx, config.DBConfig{
		Driver: config.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, migrate.Run(ctx, client, nil))
	return NewRepo(client)
}

func TestCreateAssignsIDsFromOne(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := &models.Target{Name: "Reception"}
	require.NoError(t, repo.Create(ctx, first))
	second := &models.Target{Name: "Lab"}
	require.NoError(t, repo.Create(ctx, second))

	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 2, second.ID)
}

func TestGetByIDMiss(t *testing.T) {
	repo := newTestRepo(t)

	target, err := repo.GetByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, target)
}

func TestSaveUpdatesFields(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	target := &models.Target{Name: "Reception"}
	require.NoError(t, repo.Create(ctx, target))

	description := "front desk drop-off"
	target.Description = &description
	require.NoError(t, repo.Save(ctx, target))

	loaded, err := repo.GetByID(ctx, target.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.NotNil(t, loaded.Description)
	assert.Equal(t, description, *loaded.Description)
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	target := &models.Target{Name: "Reception"}
	require.NoError(t, repo.Create(ctx, target))

	removed, err := repo.Delete(ctx, target.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(ctx, target.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	exists, err := repo.Exists(ctx, target.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDeleteAll(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Target{Name: "Reception"}))
	require.NoError(t, repo.Create(ctx, &models.Target{Name: "Lab"}))

	require.NoError(t, repo.DeleteAll(ctx))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
