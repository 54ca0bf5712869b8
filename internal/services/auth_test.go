package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booksummarizer/internal/models"
)

func newTestAuthService(t *testing.T, allowAdminSignup bool) (*AuthService, *SessionManager) {
	t.Helper()
	store, users := newTestCredentialStore(t)
	sessions := NewSessionManager(newMemSessionRepo(users), time.Hour)
	return NewAuthService(store, sessions, allowAdminSignup), sessions
}

func TestRegisterSignsIn(t *testing.T) {
	auth, sessions := newTestAuthService(t, false)
	ctx := context.Background()

	resp, err := auth.Register(ctx, models.RegisterRequest{
		Username: "alice", Email: "alice@x.com", Password: "pw1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.User.Username)
	assert.Empty(t, resp.User.PasswordHash)

	user, err := sessions.Validate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, user.ID)
}

func TestRegisterAdmin(t *testing.T) {
	req := models.RegisterRequest{Username: "root", Email: "root@x.com", Password: "pw", IsAdmin: true}

	auth, _ := newTestAuthService(t, true)
	resp, err := auth.Register(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.User.IsAdmin)
	assert.NotEmpty(t, resp.Token)
}

func TestRegisterAdminDisabled(t *testing.T) {
	auth, _ := newTestAuthService(t, false)

	_, err := auth.Register(context.Background(), models.RegisterRequest{Username: "root", Email: "root@x.com", Password: "pw", IsAdmin: true})
	var forbidden *ForbiddenError
	assert.ErrorAs(t, err, &forbidden)

	resp, err := auth.Register(context.Background(), models.RegisterRequest{Username: "bob", Email: "bob@x.com", Password: "pw"})
	require.NoError(t, err)
	assert.False(t, resp.User.IsAdmin)
}

func TestRegisterDuplicate(t *testing.T) {
	auth, _ := newTestAuthService(t, false)
	ctx := context.Background()

	_, err := auth.Register(ctx, models.RegisterRequest{Username: "alice", Email: "alice@x.com", Password: "pw1"})
	require.NoError(t, err)

	_, err = auth.Register(ctx, models.RegisterRequest{Username: "alice", Email: "new@x.com", Password: "pw1"})
	var dup *DuplicateError
	assert.ErrorAs(t, err, &dup)
}

func TestLoginAndLogout(t *testing.T) {
	auth, sessions := newTestAuthService(t, false)
	ctx := context.Background()

	_, err := auth.Register(ctx, models.RegisterRequest{Username: "alice", Email: "alice@x.com", Password: "pw1"})
	require.NoError(t, err)

	first, err := auth.Login(ctx, models.LoginRequest{Username: "alice", Password: "pw1"})
	require.NoError(t, err)
	second, err := auth.Login(ctx, models.LoginRequest{Username: "alice", Password: "pw1"})
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)

	_, err = auth.Login(ctx, models.LoginRequest{Username: "alice", Password: "nope"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Login(ctx, models.LoginRequest{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, auth.Logout(ctx, first.Token))
	require.NoError(t, auth.Logout(ctx, first.Token))

	_, err = sessions.Validate(ctx, first.Token)
	assert.ErrorIs(t, err, ErrInvalidSession)
	_, err = sessions.Validate(ctx, second.Token)
	assert.NoError(t, err)
}
