package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// UserID identifies a user account. Generated once at registration and
// immutable afterwards.
type UserID struct {
	id uuid.UUID
}

// NewUserID generates a fresh user identity.
func NewUserID() UserID { return UserID{id: uuid.New()} }

// ParseUserID rehydrates a stored user id.
func ParseUserID(s string) (UserID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, fmt.Errorf("parse user id: %w", err)
	}
	return UserID{id: id}, nil
}

func (u UserID) String() string { return u.id.String() }

// IsZero reports whether the id was never generated or parsed.
func (u UserID) IsZero() bool { return u.id == uuid.Nil }

// SessionID identifies a session. Client-supplied session ids go through
// ParseSessionID so malformed tokens never reach the repositories.
type SessionID struct {
	id uuid.UUID
}

// NewSessionID generates a fresh session identity.
func NewSessionID() SessionID { return SessionID{id: uuid.New()} }

// ParseSessionID parses a raw session token. Callers treat failure as an
// authentication outcome, not a server error.
func ParseSessionID(s string) (SessionID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return SessionID{}, fmt.Errorf("parse session id: %w", err)
	}
	return SessionID{id: id}, nil
}

func (s SessionID) String() string { return s.id.String() }

// IsZero reports whether the id was never generated or parsed.
func (s SessionID) IsZero() bool { return s.id == uuid.Nil }
