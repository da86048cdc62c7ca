package worker

import (
	"context"
	"log/slog"
	"time"

	"budgeteer/internal/auth"
	"budgeteer/internal/storage"
)

// SessionSweeper periodically deletes sessions whose inactivity window
// elapsed. The API already rejects and deletes expired sessions on contact;
// the sweeper reaps the ones whose owners simply walked away.
type SessionSweeper struct {
	sessions *storage.SessionRepo
	interval time.Duration
	now      func() time.Time
}

func NewSessionSweeper(sessions *storage.SessionRepo, interval time.Duration) *SessionSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SessionSweeper{sessions: sessions, interval: interval, now: time.Now}
}

// Run sweeps on a ticker until the context is cancelled.
func (s *SessionSweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n, err := s.Sweep(ctx); err != nil {
				slog.ErrorContext(ctx, "Session sweep failed", "error", err)
			} else if n > 0 {
				slog.InfoContext(ctx, "Swept expired sessions", "count", n)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Sweep deletes every expired session and returns how many were removed.
func (s *SessionSweeper) Sweep(ctx context.Context) (int, error) {
	sessions, err := s.sessions.List(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	now := s.now()
	for _, session := range sessions {
		if _, err := auth.ValidateSession(session, now); err == nil {
			continue
		}
		if err := s.sessions.Delete(ctx, session.Token); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
