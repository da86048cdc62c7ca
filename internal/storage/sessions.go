package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"budgeteer/internal/core"
	"budgeteer/internal/dbx"
)

type SessionRepo struct {
	q dbx.DBTX
}

func NewSessionRepo(q dbx.DBTX) *SessionRepo {
	return &SessionRepo{q: q}
}

// Replace drops any existing session for the account and stores the new one.
// One active session per account.
func (r *SessionRepo) Replace(ctx context.Context, s core.Session) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, s.AccountID); err != nil {
		return fmt.Errorf("drop old sessions: %w", err)
	}
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO sessions (user_id, token, last_activity, timeout_seconds) VALUES (?, ?, ?, ?)`,
		s.AccountID, s.Token, s.LastActivity, int64(s.Timeout.Seconds()))
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionRepo) GetByToken(ctx context.Context, token string) (core.Session, error) {
	var s core.Session
	var timeoutSeconds int64
	err := r.q.QueryRowContext(ctx,
		`SELECT user_id, token, last_activity, timeout_seconds FROM sessions WHERE token = ?`, token).
		Scan(&s.AccountID, &s.Token, &s.LastActivity, &timeoutSeconds)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Session{}, ErrNotFound
	}
	if err != nil {
		return core.Session{}, fmt.Errorf("get session: %w", err)
	}
	s.Timeout = time.Duration(timeoutSeconds) * time.Second
	return s, nil
}

// Touch refreshes the session's activity timestamp.
func (r *SessionRepo) Touch(ctx context.Context, token string, at time.Time) error {
	_, err := r.q.ExecContext(ctx, `UPDATE sessions SET last_activity = ? WHERE token = ?`, at, token)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// List returns every stored session, for the expiry sweeper.
func (r *SessionRepo) List(ctx context.Context) ([]core.Session, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT user_id, token, last_activity, timeout_seconds FROM sessions`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []core.Session
	for rows.Next() {
		var s core.Session
		var timeoutSeconds int64
		if err := rows.Scan(&s.AccountID, &s.Token, &s.LastActivity, &timeoutSeconds); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		s.Timeout = time.Duration(timeoutSeconds) * time.Second
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
