// Package auth implements the credential and session guard: password
// hashing, the failed-attempt lockout state machine, password change rules
// and session validity. All functions are pure over the records passed in;
// persistence belongs to the caller.
package auth

import (
	"errors"
	"fmt"
	"time"

	"budgeteer/internal/core"
)

const (
	DefaultAttemptLimit   = 5
	DefaultLockDuration   = 10 * time.Minute
	DefaultSessionTimeout = 15 * time.Minute
)

var (
	ErrTooManyAttempts  = errors.New("account locked due to too many failed attempts")
	ErrPasswordMismatch = errors.New("current password is incorrect")
	ErrSamePassword     = errors.New("new password must differ from the current one")
	ErrPasswordReused   = errors.New("new password was used before")
	ErrConfirmMismatch  = errors.New("password confirmation does not match")
	ErrSessionExpired   = errors.New("session expired")
)

// LockedError is returned while an account lockout is still in effect.
type LockedError struct {
	RemainingMinutes int
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("account locked, try again in %d minute(s)", e.RemainingMinutes)
}

// InvalidCredentialsError reports a failed password check together with the
// number of attempts left before lockout.
type InvalidCredentialsError struct {
	Remaining int
}

func (e *InvalidCredentialsError) Error() string {
	return fmt.Sprintf("invalid credentials, %d attempt(s) remaining", e.Remaining)
}

// LoginPolicy bounds the failed-attempt counter.
type LoginPolicy struct {
	AttemptLimit int
	LockDuration time.Duration
}

func DefaultLoginPolicy() LoginPolicy {
	return LoginPolicy{AttemptLimit: DefaultAttemptLimit, LockDuration: DefaultLockDuration}
}

// Credential is the hashed secret produced by a successful password change or
// registration.
type Credential struct {
	Digest string
	Salt   string
}

// NewCredential validates password strength and derives a fresh salted digest.
func NewCredential(password string) (Credential, error) {
	if err := core.ValidatePasswordStrength(password); err != nil {
		return Credential{}, err
	}
	salt, err := NewSalt()
	if err != nil {
		return Credential{}, err
	}
	return Credential{Digest: HashPassword(password, salt), Salt: salt}, nil
}

// Authenticate runs the lockout state machine against one login attempt and
// returns the updated account record. The caller must persist the returned
// account regardless of the error: failed attempts and lockout expiry both
// mutate it.
func (p LoginPolicy) Authenticate(account core.Account, password string, now time.Time) (core.Account, error) {
	if account.LockoutUntil != nil {
		if now.Before(*account.LockoutUntil) {
			return account, &LockedError{RemainingMinutes: remainingMinutes(*account.LockoutUntil, now)}
		}
		// Lockout expired, the counter starts over.
		account.LockoutUntil = nil
		account.FailedAttempts = 0
	}

	if VerifyDigest(password, account.Salt, account.PasswordDigest) {
		account.FailedAttempts = 0
		account.LockoutUntil = nil
		return account, nil
	}

	account.FailedAttempts++
	if account.FailedAttempts >= p.AttemptLimit {
		until := now.Add(p.LockDuration)
		account.LockoutUntil = &until
		return account, ErrTooManyAttempts
	}
	return account, &InvalidCredentialsError{Remaining: p.AttemptLimit - account.FailedAttempts}
}

// ChangePassword verifies the current password under the same lockout rules
// as login, enforces strength, confirmation, sameness and history reuse
// checks, and returns the new credential. history must hold the account's
// previous credentials; each entry keeps its own salt.
func (p LoginPolicy) ChangePassword(account core.Account, history []core.PasswordHistoryEntry, current, newPassword, confirm string, now time.Time) (core.Account, Credential, error) {
	account, err := p.Authenticate(account, current, now)
	if err != nil {
		var invalid *InvalidCredentialsError
		if errors.As(err, &invalid) {
			return account, Credential{}, fmt.Errorf("%w: %v", ErrPasswordMismatch, err)
		}
		return account, Credential{}, err
	}

	if newPassword != confirm {
		return account, Credential{}, ErrConfirmMismatch
	}
	if err := core.ValidatePasswordStrength(newPassword); err != nil {
		return account, Credential{}, err
	}
	if VerifyDigest(newPassword, account.Salt, account.PasswordDigest) {
		return account, Credential{}, ErrSamePassword
	}
	for _, entry := range history {
		if VerifyDigest(newPassword, entry.Salt, entry.Digest) {
			return account, Credential{}, ErrPasswordReused
		}
	}

	cred, err := NewCredential(newPassword)
	if err != nil {
		return account, Credential{}, err
	}
	account.PasswordDigest = cred.Digest
	account.Salt = cred.Salt
	return account, cred, nil
}

// ValidateSession fails closed: a session whose inactivity window elapsed is
// invalid and must be deleted by the caller. A valid session comes back with
// LastActivity refreshed to now.
func ValidateSession(s core.Session, now time.Time) (core.Session, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultSessionTimeout
	}
	if now.Sub(s.LastActivity) > timeout {
		return s, ErrSessionExpired
	}
	s.LastActivity = now
	return s, nil
}

// remainingMinutes rounds the time left up to whole minutes, never below 1.
func remainingMinutes(until, now time.Time) int {
	left := until.Sub(now)
	minutes := int((left + time.Minute - 1) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
