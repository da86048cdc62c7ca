package worker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgeteer/internal/core"
	"budgeteer/internal/storage"
)

func TestSweepRemovesOnlyExpiredSessions(t *testing.T) {
	db, err := storage.Open(filepath.Join(t.TempDir(), "sweeper.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	accounts := storage.NewAccountRepo(db)
	sessions := storage.NewSessionRepo(db)

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	fresh, err := accounts.Create(ctx, "fresh", "fresh@example.com", "digest", "salt", now)
	require.NoError(t, err)
	stale, err := accounts.Create(ctx, "stale", "stale@example.com", "digest", "salt", now)
	require.NoError(t, err)

	require.NoError(t, sessions.Replace(ctx, core.Session{
		AccountID: fresh.ID, Token: "fresh-token", LastActivity: now.Add(-5 * time.Minute), Timeout: 15 * time.Minute,
	}))
	require.NoError(t, sessions.Replace(ctx, core.Session{
		AccountID: stale.ID, Token: "stale-token", LastActivity: now.Add(-20 * time.Minute), Timeout: 15 * time.Minute,
	}))

	sweeper := NewSessionSweeper(sessions, time.Minute)
	sweeper.now = func() time.Time { return now }

	removed, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = sessions.GetByToken(ctx, "fresh-token")
	assert.NoError(t, err)
	_, err = sessions.GetByToken(ctx, "stale-token")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSweepTreatsZeroTimeoutAsDefault(t *testing.T) {
	db, err := storage.Open(filepath.Join(t.TempDir(), "sweeper.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	accounts := storage.NewAccountRepo(db)
	sessions := storage.NewSessionRepo(db)

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	account, err := accounts.Create(ctx, "zoe", "zoe@example.com", "digest", "salt", now)
	require.NoError(t, err)

	// 16 minutes idle with no explicit timeout: past the default window.
	require.NoError(t, sessions.Replace(ctx, core.Session{
		AccountID: account.ID, Token: "token", LastActivity: now.Add(-16 * time.Minute),
	}))

	sweeper := NewSessionSweeper(sessions, time.Minute)
	sweeper.now = func() time.Time { return now }

	removed, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}
