package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"budgeteer/internal/auth"
	"budgeteer/internal/core"
	"budgeteer/internal/dbx"
	"budgeteer/internal/storage"
)

// AuthService owns registration, login, logout and password changes. Login
// and password change run inside a transaction because the lockout counter is
// a read-modify-write over the account row.
type AuthService struct {
	db             *sql.DB
	policy         auth.LoginPolicy
	sessionTimeout time.Duration
	now            func() time.Time
}

func NewAuthService(db *sql.DB, policy auth.LoginPolicy, sessionTimeout time.Duration) *AuthService {
	if sessionTimeout <= 0 {
		sessionTimeout = auth.DefaultSessionTimeout
	}
	return &AuthService{
		db:             db,
		policy:         policy,
		sessionTimeout: sessionTimeout,
		now:            time.Now,
	}
}

// Register creates an account and seeds its password history with the initial
// credential.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (core.Account, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" {
		return core.Account{}, core.ErrEmptyName
	}
	if err := core.ValidateEmailFormat(email); err != nil {
		return core.Account{}, err
	}
	cred, err := auth.NewCredential(password)
	if err != nil {
		return core.Account{}, err
	}

	var account core.Account
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		accounts := storage.NewAccountRepo(tx)
		now := s.now().UTC()
		account, err = accounts.Create(ctx, username, email, cred.Digest, cred.Salt, now)
		if errors.Is(err, storage.ErrDuplicate) {
			return ErrIdentityTaken
		}
		if err != nil {
			return err
		}
		return accounts.AddPasswordHistory(ctx, account.ID, cred.Digest, cred.Salt, now)
	})
	if err != nil {
		return core.Account{}, err
	}

	slog.InfoContext(ctx, "Account registered", "account_id", account.ID, "username", account.Username)
	return account, nil
}

// Login runs the lockout state machine and, on success, replaces the
// account's session with a fresh one. The updated attempt counter is
// persisted even when the password was wrong.
func (s *AuthService) Login(ctx context.Context, username, password string) (core.Session, error) {
	var session core.Session
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		accounts := storage.NewAccountRepo(tx)
		account, err := accounts.GetByUsername(ctx, username)
		if errors.Is(err, storage.ErrNotFound) {
			// Same shape as a wrong password so usernames cannot be probed.
			return &auth.InvalidCredentialsError{Remaining: s.policy.AttemptLimit}
		}
		if err != nil {
			return err
		}

		account, authErr := s.policy.Authenticate(account, password, s.now())
		if err := accounts.UpdateSecurity(ctx, account); err != nil {
			return err
		}
		if authErr != nil {
			return authErr
		}

		token, err := auth.NewSessionToken()
		if err != nil {
			return err
		}
		session = core.Session{
			AccountID:    account.ID,
			Token:        token,
			LastActivity: s.now().UTC(),
			Timeout:      s.sessionTimeout,
		}
		return storage.NewSessionRepo(tx).Replace(ctx, session)
	})
	if err != nil {
		return core.Session{}, err
	}

	slog.InfoContext(ctx, "Login succeeded", "account_id", session.AccountID)
	return session, nil
}

// Logout drops the session; unknown tokens are a no-op.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return storage.NewSessionRepo(s.db).Delete(ctx, token)
}

// Authorize resolves a session token to an account. Expired sessions are
// deleted on sight; valid ones get their activity timestamp refreshed.
func (s *AuthService) Authorize(ctx context.Context, token string) (core.Account, error) {
	sessions := storage.NewSessionRepo(s.db)
	session, err := sessions.GetByToken(ctx, token)
	if errors.Is(err, storage.ErrNotFound) {
		return core.Account{}, ErrInvalidSession
	}
	if err != nil {
		return core.Account{}, err
	}

	session, err = auth.ValidateSession(session, s.now())
	if err != nil {
		if delErr := sessions.Delete(ctx, session.Token); delErr != nil {
			slog.WarnContext(ctx, "Failed to delete expired session", "error", delErr)
		}
		return core.Account{}, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}
	if err := sessions.Touch(ctx, session.Token, session.LastActivity); err != nil {
		return core.Account{}, err
	}

	return storage.NewAccountRepo(s.db).GetByID(ctx, session.AccountID)
}

// ChangePassword re-verifies the current password under lockout rules,
// applies the strength, confirmation and reuse checks, and rotates the
// credential. The old credential goes to the history so it cannot come back.
func (s *AuthService) ChangePassword(ctx context.Context, accountID int64, current, newPassword, confirm string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		accounts := storage.NewAccountRepo(tx)
		account, err := accounts.GetByID(ctx, accountID)
		if err != nil {
			return err
		}
		history, err := accounts.PasswordHistory(ctx, accountID)
		if err != nil {
			return err
		}

		updated, cred, changeErr := s.policy.ChangePassword(account, history, current, newPassword, confirm, s.now())
		if err := accounts.UpdateSecurity(ctx, updated); err != nil {
			return err
		}
		if changeErr != nil {
			return changeErr
		}
		return accounts.AddPasswordHistory(ctx, accountID, cred.Digest, cred.Salt, s.now().UTC())
	})
}
