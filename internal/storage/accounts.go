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

type AccountRepo struct {
	q dbx.DBTX
}

func NewAccountRepo(q dbx.DBTX) *AccountRepo {
	return &AccountRepo{q: q}
}

const accountColumns = `user_id, username, email, password_hash, salt, failed_password_attempts, lockout_until, created_at`

func scanAccount(row *sql.Row) (core.Account, error) {
	var a core.Account
	var lockout sql.NullTime
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordDigest, &a.Salt, &a.FailedAttempts, &lockout, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, ErrNotFound
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("scan account: %w", err)
	}
	if lockout.Valid {
		a.LockoutUntil = &lockout.Time
	}
	return a, nil
}

func (r *AccountRepo) Create(ctx context.Context, username, email, digest, salt string, now time.Time) (core.Account, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, salt, created_at) VALUES (?, ?, ?, ?, ?)`,
		username, email, digest, salt, now)
	if isUniqueViolation(err) {
		return core.Account{}, ErrDuplicate
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Account{}, fmt.Errorf("account id: %w", err)
	}
	return core.Account{
		ID:             id,
		Username:       username,
		Email:          email,
		PasswordDigest: digest,
		Salt:           salt,
		CreatedAt:      now,
	}, nil
}

func (r *AccountRepo) GetByUsername(ctx context.Context, username string) (core.Account, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM users WHERE username = ?`, username)
	return scanAccount(row)
}

func (r *AccountRepo) GetByID(ctx context.Context, id int64) (core.Account, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM users WHERE user_id = ?`, id)
	return scanAccount(row)
}

// UpdateSecurity persists the mutable credential and lockout state after a
// login attempt or password change.
func (r *AccountRepo) UpdateSecurity(ctx context.Context, a core.Account) error {
	var lockout any
	if a.LockoutUntil != nil {
		lockout = *a.LockoutUntil
	}
	_, err := r.q.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, salt = ?, failed_password_attempts = ?, lockout_until = ? WHERE user_id = ?`,
		a.PasswordDigest, a.Salt, a.FailedAttempts, lockout, a.ID)
	if err != nil {
		return fmt.Errorf("update account security: %w", err)
	}
	return nil
}

func (r *AccountRepo) AddPasswordHistory(ctx context.Context, accountID int64, digest, salt string, changedAt time.Time) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO password_history (user_id, password_hash, salt, changed_at) VALUES (?, ?, ?, ?)`,
		accountID, digest, salt, changedAt)
	if err != nil {
		return fmt.Errorf("add password history: %w", err)
	}
	return nil
}

// PasswordHistory returns the account's previous credentials, newest first.
func (r *AccountRepo) PasswordHistory(ctx context.Context, accountID int64) ([]core.PasswordHistoryEntry, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT history_id, user_id, password_hash, salt, changed_at
		 FROM password_history WHERE user_id = ? ORDER BY changed_at DESC, history_id DESC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("password history: %w", err)
	}
	defer rows.Close()

	var entries []core.PasswordHistoryEntry
	for rows.Next() {
		var e core.PasswordHistoryEntry
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Digest, &e.Salt, &e.ChangedAt); err != nil {
			return nil, fmt.Errorf("scan password history: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
