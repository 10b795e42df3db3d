package domain

import (
	"errors"
	"net/mail"
	"strings"
)

// ErrInvalidEmail is returned when an email address is empty or malformed.
var ErrInvalidEmail = errors.New("invalid email address")

// Email is a validated email address. The normalized (trimmed, lower-cased)
// form is the identity key for lookups and rate limiting; the raw form is
// retained only for display.
type Email struct {
	raw        string
	normalized string
}

// NewEmail validates and normalizes the given address.
func NewEmail(raw string) (Email, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return Email{}, ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(normalized)
	if err != nil || addr.Address != normalized {
		return Email{}, ErrInvalidEmail
	}
	return Email{raw: raw, normalized: normalized}, nil
}

// Raw returns the address as the caller supplied it.
func (e Email) Raw() string { return e.raw }

// Normalized returns the canonical lower-cased address.
func (e Email) Normalized() string { return e.normalized }

func (e Email) String() string { return e.normalized }

// IsZero reports whether the email has not been constructed via NewEmail.
func (e Email) IsZero() bool { return e.normalized == "" }
