package domain

import (
	"testing"
	"time"

	identitydomain "authgate/backend/internal/identity/domain"
)

func testSession(now time.Time, ttl time.Duration) Session {
	return New(identitydomain.NewSessionID(), identitydomain.NewUserID(),
		identitydomain.CSRFTokenFromStored("token"), "203.0.113.7", "go-test", now, ttl)
}

func TestSessionExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := testSession(now, 24*time.Hour)

	if s.IsExpired(now) {
		t.Fatal("fresh session must not be expired")
	}
	if s.IsExpired(now.Add(24*time.Hour - time.Second)) {
		t.Fatal("session must live until ExpiresAt")
	}
	if !s.IsExpired(now.Add(24 * time.Hour)) {
		t.Fatal("session must expire exactly at ExpiresAt")
	}
}

func TestSessionNeedsRefresh(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := testSession(now, 24*time.Hour)

	if s.NeedsRefresh(now.Add(ActivityRefreshInterval)) {
		t.Fatal("refresh must not trigger at exactly the interval")
	}
	if !s.NeedsRefresh(now.Add(ActivityRefreshInterval + time.Second)) {
		t.Fatal("refresh must trigger past the interval")
	}
}
