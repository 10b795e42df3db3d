package domain

import (
	"time"

	identitydomain "authgate/backend/internal/identity/domain"
)

// ActivityRefreshInterval is the sliding-activity threshold: once more time
// than this has passed since LastActivityAt, a read through the session
// schedules a best-effort activity update.
const ActivityRefreshInterval = 5 * time.Minute

// Session is issued at successful login. ExpiresAt is fixed at creation and
// CSRFToken never changes for the session's lifetime; LastActivityAt only
// moves forward. There is no revoked state: logout deletes the row.
type Session struct {
	ID             identitydomain.SessionID
	UserID         identitydomain.UserID
	CSRFToken      identitydomain.CSRFToken
	IPAddress      string
	UserAgent      string
	CreatedAt      time.Time
	LastActivityAt time.Time
	ExpiresAt      time.Time
}

// New creates a session expiring ttl after now.
func New(id identitydomain.SessionID, userID identitydomain.UserID, csrfToken identitydomain.CSRFToken, ip, userAgent string, now time.Time, ttl time.Duration) Session {
	return Session{
		ID:             id,
		UserID:         userID,
		CSRFToken:      csrfToken,
		IPAddress:      ip,
		UserAgent:      userAgent,
		CreatedAt:      now,
		LastActivityAt: now,
		ExpiresAt:      now.Add(ttl),
	}
}

// IsExpired reports whether the session has expired at the supplied time.
func (s Session) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// NeedsRefresh reports whether enough time has passed since the last recorded
// activity to warrant a best-effort activity-timestamp update.
func (s Session) NeedsRefresh(now time.Time) bool {
	return now.Sub(s.LastActivityAt) > ActivityRefreshInterval
}
