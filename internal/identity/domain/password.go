package domain

import (
	"errors"
	"fmt"
	"strings"
)

const (
	minPasswordLength = 12
	maxPasswordLength = 128
)

// ErrWeakPassword is returned by NewPassword when the candidate fails the
// registration strength policy.
var ErrWeakPassword = errors.New("weak password")

// weakPatterns are substrings of widely reused credentials; any candidate
// containing one is rejected at registration regardless of length.
var weakPatterns = []string{"password", "qwerty", "123456", "letmein"}

// Password holds a plaintext credential transiently for hashing or
// verification. It is never persisted and must not be logged.
type Password struct {
	plaintext string
}

// NewPassword applies the registration strength policy: length bounds and a
// denylist of common passwords.
func NewPassword(raw string) (Password, error) {
	if len(raw) < minPasswordLength {
		return Password{}, fmt.Errorf("%w: Password must be at least %d characters", ErrWeakPassword, minPasswordLength)
	}
	if len(raw) > maxPasswordLength {
		return Password{}, fmt.Errorf("%w: Password must be at most %d characters", ErrWeakPassword, maxPasswordLength)
	}
	lowered := strings.ToLower(raw)
	for _, banned := range weakPatterns {
		if strings.Contains(lowered, banned) {
			return Password{}, fmt.Errorf("%w: Password is too common", ErrWeakPassword)
		}
	}
	return Password{plaintext: raw}, nil
}

// UncheckedPassword wraps a login-time candidate without strength validation.
// Accounts may predate the current policy, so authentication stays permissive;
// only registration enforces strength.
func UncheckedPassword(raw string) Password {
	return Password{plaintext: raw}
}

// Plaintext returns the transient secret for hashing or verification.
func (p Password) Plaintext() string { return p.plaintext }

// IsZero reports whether the password is empty.
func (p Password) IsZero() bool { return p.plaintext == "" }

// String masks the secret so accidental formatting never leaks it.
func (p Password) String() string { return "***" }
