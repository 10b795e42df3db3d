package domain

import (
	"bytes"
	"errors"
	"regexp"
	"strings"
	"testing"
)

func TestNewEmailNormalizes(t *testing.T) {
	e, err := NewEmail("  Alice@Example.COM ")
	if err != nil {
		t.Fatalf("NewEmail: %v", err)
	}
	if e.Normalized() != "alice@example.com" {
		t.Fatalf("normalized = %q", e.Normalized())
	}
	if e.Raw() != "  Alice@Example.COM " {
		t.Fatalf("raw = %q", e.Raw())
	}
}

func TestNewEmailRejectsMalformed(t *testing.T) {
	for _, raw := range []string{"", "   ", "plainstring", "@example.com", "a@", "a b@example.com"} {
		if _, err := NewEmail(raw); !errors.Is(err, ErrInvalidEmail) {
			t.Fatalf("NewEmail(%q) = %v, want ErrInvalidEmail", raw, err)
		}
	}
}

func TestNewPasswordPolicy(t *testing.T) {
	if _, err := NewPassword("Str0ngPassw0rd!"); err != nil {
		t.Fatalf("strong password rejected: %v", err)
	}
	for _, weak := range []string{
		"short",
		strings.Repeat("x", 129),
		"MyPassword123456",
		"xxQWERTYxx12345",
	} {
		if _, err := NewPassword(weak); !errors.Is(err, ErrWeakPassword) {
			t.Fatalf("NewPassword(%q) = %v, want ErrWeakPassword", weak, err)
		}
	}
}

func TestUncheckedPasswordSkipsPolicy(t *testing.T) {
	p := UncheckedPassword("123456")
	if p.Plaintext() != "123456" {
		t.Fatalf("plaintext = %q", p.Plaintext())
	}
	if p.String() == "123456" {
		t.Fatal("String must not expose the secret")
	}
}

func TestSessionIDRoundTrip(t *testing.T) {
	id := NewSessionID()
	parsed, err := ParseSessionID(id.String())
	if err != nil {
		t.Fatalf("ParseSessionID: %v", err)
	}
	if parsed != id {
		t.Fatalf("round trip mismatch: %s vs %s", parsed, id)
	}
	if _, err := ParseSessionID("not-a-uuid"); err == nil {
		t.Fatal("malformed session id must not parse")
	}
}

func TestNewCSRFToken(t *testing.T) {
	tok, err := NewCSRFToken(bytes.NewReader(bytes.Repeat([]byte{0x5c}, 32)))
	if err != nil {
		t.Fatalf("NewCSRFToken: %v", err)
	}
	if !regexp.MustCompile(`^[0-9a-f]{64}$`).MatchString(tok.String()) {
		t.Fatalf("token %q is not 64 hex chars", tok)
	}
	if _, err := NewCSRFToken(bytes.NewReader(nil)); err == nil {
		t.Fatal("exhausted entropy source must error")
	}
}
