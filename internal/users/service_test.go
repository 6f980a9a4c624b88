package users

import (
	"context"
	"testing"

	"github.com/courierlabs/robocourier-backend/pkg/config"
	"github.com/courierlabs/robocourier-backend/pkg/db/models"
	"github.com/courierlabs/robocourier-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	byUsername map[string]*models.User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byUsername: make(map[string]*models.User)}
}

func (f *fakeRepo) Create(ctx context.Context, user *models.User) error {
	f.byUsername[user.Username] = user
	return nil
}

func (f *fakeRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return f.byUsername[username], nil
}

func (f *fakeRepo) Exists(ctx context.Context, username string) (bool, error) {
	_, ok := f.byUsername[username]
	return ok, nil
}

func (f *fakeRepo) List(ctx context.Context) ([]models.User, error) {
	all := make([]models.User, 0, len(f.byUsername))
	for _, user := range f.byUsername {
		all = append(all, *user)
	}
	return all, nil
}

func testPasswordConfig() config.PasswordConfig {
	// Cheap parameters keep the hash fast in tests.
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, testPasswordConfig())
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "hunter2"))

	match, err := svc.Authenticate(ctx, "alice", "hunter2")
	require.NoError(t, err)
	assert.True(t, match)

	match, err = svc.Authenticate(ctx, "alice", "wrong")
	require.NoError(t, err)
	assert.False(t, match)

	match, err = svc.Authenticate(ctx, "ghost", "hunter2")
	require.NoError(t, err)
	assert.False(t, match)
}

func TestRegisterStoresHashNotPassword(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, testPasswordConfig())

	require.NoError(t, svc.Register(context.Background(), "alice", "hunter2"))

	stored := repo.byUsername["alice"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "hunter2", stored.PasswordHash)
	assert.Contains(t, stored.PasswordHash, "$argon2id$")
}

func TestRegisterRejectsDuplicate(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, testPasswordConfig())
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "hunter2"))

	err := svc.Register(ctx, "alice", "other")
	require.Error(t, err)
	typed := errors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, errors.CodeValidation, typed.Code())
}

func TestListReturnsSummaries(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, testPasswordConfig())
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "hunter2"))

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, Summary{Username: "alice"}, all[0])
}

func TestRegisterRejectsEmptyFields(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, testPasswordConfig())

	err := svc.Register(context.Background(), "", "hunter2")
	require.Error(t, err)

	err = svc.Register(context.Background(), "alice", "")
	require.Error(t, err)
}
