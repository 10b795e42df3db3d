package service

import (
	"time"
)

// Use cases return typed errors across the service boundary; the HTTP handler
// maps them to status codes. Anything not wrapped in one of these types is an
// internal failure (500).

// ValidationError reports caller-fixable input problems with per-field
// messages.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string { return "validation failed" }

// fieldError builds a ValidationError for a single field.
func fieldError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {message}}}
}

// ConflictError reports a uniqueness violation (duplicate email).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// UnauthorizedError reports an authentication failure: invalid credentials,
// locked account, or an invalid/expired session. The message for nonexistent
// accounts and wrong passwords is deliberately identical so responses cannot
// be used to enumerate accounts.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string { return e.Message }

// RateLimitError tells the client how long to back off.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string { return "too many attempts" }

const (
	msgInvalidCredentials = "Invalid email or password"
	msgAccountLocked      = "Account is temporarily locked"
	msgInvalidSession     = "Invalid session"
	msgSessionExpired     = "Session expired"
)
