package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgeteer/internal/auth"
	"budgeteer/internal/storage"
)

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.register(t, "alice")

	_, err := env.auth.Register(ctx, "alice", "other@example.com", testPassword)
	assert.ErrorIs(t, err, ErrIdentityTaken)

	_, err = env.auth.Register(ctx, "bob", "not-an-email", testPassword)
	require.Error(t, err)

	_, err = env.auth.Register(ctx, "bob", "bob@example.com", "short")
	require.Error(t, err)
}

func TestLoginLockout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "alice")

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	env.auth.now = func() time.Time { return now }

	for i := 1; i < auth.DefaultAttemptLimit; i++ {
		_, err := env.auth.Login(ctx, "alice", "wrong")
		var invalid *auth.InvalidCredentialsError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, auth.DefaultAttemptLimit-i, invalid.Remaining)
	}

	_, err := env.auth.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, auth.ErrTooManyAttempts)

	// Even the right password is refused while locked.
	_, err = env.auth.Login(ctx, "alice", testPassword)
	var locked *auth.LockedError
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, 10, locked.RemainingMinutes)

	// Once the lockout lapses the counter starts over.
	now = now.Add(11 * time.Minute)
	session, err := env.auth.Login(ctx, "alice", testPassword)
	require.NoError(t, err)
	assert.Len(t, session.Token, 64)
}

func TestLoginUnknownUserLooksLikeWrongPassword(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.Login(context.Background(), "nobody", "whatever")
	var invalid *auth.InvalidCredentialsError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, auth.DefaultAttemptLimit, invalid.Remaining)
}

func TestSingleSessionPerAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	account := env.register(t, "alice")

	first, err := env.auth.Login(ctx, "alice", testPassword)
	require.NoError(t, err)
	second, err := env.auth.Login(ctx, "alice", testPassword)
	require.NoError(t, err)
	require.NotEqual(t, first.Token, second.Token)

	_, err = env.auth.Authorize(ctx, first.Token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	got, err := env.auth.Authorize(ctx, second.Token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)
}

func TestAuthorizeExpiry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "alice")

	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	env.auth.now = func() time.Time { return now }

	session, err := env.auth.Login(ctx, "alice", testPassword)
	require.NoError(t, err)

	// Activity inside the window keeps the session alive.
	now = now.Add(10 * time.Minute)
	_, err = env.auth.Authorize(ctx, session.Token)
	require.NoError(t, err)

	now = now.Add(14 * time.Minute)
	_, err = env.auth.Authorize(ctx, session.Token)
	require.NoError(t, err, "touch must have reset the inactivity window")

	now = now.Add(16 * time.Minute)
	_, err = env.auth.Authorize(ctx, session.Token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	// The expired session is gone, not just rejected.
	_, err = storage.NewSessionRepo(env.db).GetByToken(ctx, session.Token)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "alice")

	session, err := env.auth.Login(ctx, "alice", testPassword)
	require.NoError(t, err)
	require.NoError(t, env.auth.Logout(ctx, session.Token))

	_, err = env.auth.Authorize(ctx, session.Token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	assert.NoError(t, env.auth.Logout(ctx, "unknown-token"))
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	account := env.register(t, "alice")

	const newPassword = "An0ther$ecret"

	err := env.auth.ChangePassword(ctx, account.ID, "wrong-current", newPassword, newPassword)
	assert.ErrorIs(t, err, auth.ErrPasswordMismatch)

	err = env.auth.ChangePassword(ctx, account.ID, testPassword, newPassword, "different")
	assert.ErrorIs(t, err, auth.ErrConfirmMismatch)

	err = env.auth.ChangePassword(ctx, account.ID, testPassword, testPassword, testPassword)
	assert.ErrorIs(t, err, auth.ErrSamePassword)

	require.NoError(t, env.auth.ChangePassword(ctx, account.ID, testPassword, newPassword, newPassword))

	_, err = env.auth.Login(ctx, "alice", testPassword)
	require.Error(t, err)
	_, err = env.auth.Login(ctx, "alice", newPassword)
	require.NoError(t, err)

	// The previous credential stays on the blocklist.
	err = env.auth.ChangePassword(ctx, account.ID, newPassword, testPassword, testPassword)
	assert.ErrorIs(t, err, auth.ErrPasswordReused)
}

func TestChangePasswordCountsFailedAttempts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	account := env.register(t, "alice")

	for i := 0; i < auth.DefaultAttemptLimit; i++ {
		err := env.auth.ChangePassword(ctx, account.ID, "wrong", "An0ther$ecret", "An0ther$ecret")
		require.Error(t, err)
		if i == auth.DefaultAttemptLimit-1 {
			assert.ErrorIs(t, err, auth.ErrTooManyAttempts)
		}
	}

	_, err := env.auth.Login(ctx, "alice", testPassword)
	var locked *auth.LockedError
	assert.True(t, errors.As(err, &locked))
}
