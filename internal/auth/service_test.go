package auth

import (
	"context"
	"testing"
	"time"

	"github.com/courierlabs/robocourier-backend/pkg/config"
	"github.com/courierlabs/robocourier-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCredentials struct {
	accounts map[string]string
}

func (s stubCredentials) Authenticate(ctx context.Context, username, password string) (bool, error) {
	stored, ok := s.accounts[username]
	return ok && stored == password, nil
}

func newTestService() *Service {
	creds := stubCredentials{accounts: map[string]string{"alice": "hunter2"}}
	return NewService(creds, NewMemorySessions(), nil, config.AuthConfig{
		BearerTTL:    time.Hour,
		BearerLength: 32,
	})
}

func TestLoginIssuesBearer(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	bearer, err := svc.Login(ctx, "alice", "hunter2")
	require.NoError(t, err)
	assert.Len(t, bearer, 32)

	username, err := svc.Resolve(ctx, bearer)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
}

func TestLoginMintsFreshBearerEachTime(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	first, err := svc.Login(ctx, "alice", "hunter2")
	require.NoError(t, err)
	second, err := svc.Login(ctx, "alice", "hunter2")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	// Both bearers stay valid until they expire.
	username, err := svc.Resolve(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	for _, attempt := range []struct{ username, password string }{
		{"alice", "wrong"},
		{"ghost", "hunter2"},
	} {
		_, err := svc.Login(ctx, attempt.username, attempt.password)
		require.Error(t, err)
		typed := errors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, errors.CodeUnauthorized, typed.Code())
	}
}

func TestLoginRejectsEmptyCredentials(t *testing.T) {
	svc := newTestService()

	_, err := svc.Login(context.Background(), "", "")
	require.Error(t, err)
	typed := errors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, errors.CodeValidation, typed.Code())
}

func TestResolveUnknownBearer(t *testing.T) {
	svc := newTestService()

	username, err := svc.Resolve(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, username)
}

func TestLogoutRevokesBearer(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	bearer, err := svc.Login(ctx, "alice", "hunter2")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, bearer))

	username, err := svc.Resolve(ctx, bearer)
	require.NoError(t, err)
	assert.Empty(t, username)
}

func TestMemorySessionsExpire(t *testing.T) {
	sessions := NewMemorySessions()
	current := time.Now()
	sessions.now = func() time.Time { return current }

	ctx := context.Background()
	require.NoError(t, sessions.Put(ctx, "token", "alice", time.Minute))

	username, err := sessions.Resolve(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	current = current.Add(2 * time.Minute)

	username, err = sessions.Resolve(ctx, "token")
	require.NoError(t, err)
	assert.Empty(t, username)
}
