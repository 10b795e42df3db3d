package domain

import (
	"errors"
	"time"

	identitydomain "authgate/backend/internal/identity/domain"
)

const (
	// FailedLoginThreshold is the number of consecutive failed logins that
	// triggers a temporary lock.
	FailedLoginThreshold = 5
	// LockDuration is how long an account stays locked once the threshold is
	// reached. Independent from the rate limiter's retry-after window.
	LockDuration = 15 * time.Minute
)

// ErrDuplicateEmail is returned by repositories when a save would violate the
// unique index on the normalized email.
var ErrDuplicateEmail = errors.New("email already registered")

// User is the account aggregate. State transitions return a new value rather
// than mutating the receiver, so a User read from a repository is never
// changed behind the caller's back.
type User struct {
	ID                  identitydomain.UserID
	Email               identitydomain.Email
	PasswordHash        string
	FailedLoginAttempts int
	LockedUntil         *time.Time
	LastLoginAt         *time.Time
	LastLoginIP         string
	LastLoginUserAgent  string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// New creates an account at registration: zero failed attempts, no lock.
func New(id identitydomain.UserID, email identitydomain.Email, passwordHash string, now time.Time) User {
	return User{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsLocked reports whether the account is locked at the supplied time. The
// entity never reads a clock; callers pass the injected time.
func (u User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}

// RecordFailedLogin returns a copy with the failure counter incremented. Once
// the counter reaches FailedLoginThreshold the copy carries a lock expiring
// LockDuration after now.
func (u User) RecordFailedLogin(now time.Time) User {
	next := u
	next.FailedLoginAttempts++
	if next.FailedLoginAttempts >= FailedLoginThreshold {
		lockedUntil := now.Add(LockDuration)
		next.LockedUntil = &lockedUntil
	}
	next.UpdatedAt = now
	return next
}

// RecordSuccessfulLogin returns a copy with failure state reset and the login
// stamp, client IP, and user agent recorded.
func (u User) RecordSuccessfulLogin(now time.Time, ip, userAgent string) User {
	next := u
	next.FailedLoginAttempts = 0
	next.LockedUntil = nil
	loginAt := now
	next.LastLoginAt = &loginAt
	next.LastLoginIP = ip
	next.LastLoginUserAgent = userAgent
	next.UpdatedAt = now
	return next
}
