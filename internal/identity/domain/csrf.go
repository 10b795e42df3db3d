package domain

import (
	"encoding/hex"
	"fmt"
	"io"
)

// csrfTokenBytes yields a 64-hex-character token once encoded.
const csrfTokenBytes = 32

// CSRFToken is the per-session secret issued at login and echoed back by the
// client on state-changing requests. It is stored on the session record as-is;
// the session repository owns comparison discipline.
type CSRFToken struct {
	value string
}

// NewCSRFToken draws a high-entropy token from rand. Pass crypto/rand.Reader
// in production; tests inject a deterministic reader.
func NewCSRFToken(rand io.Reader) (CSRFToken, error) {
	buf := make([]byte, csrfTokenBytes)
	if _, err := io.ReadFull(rand, buf); err != nil {
		return CSRFToken{}, fmt.Errorf("generate csrf token: %w", err)
	}
	return CSRFToken{value: hex.EncodeToString(buf)}, nil
}

// CSRFTokenFromStored rehydrates a token loaded from the session store.
func CSRFTokenFromStored(value string) CSRFToken {
	return CSRFToken{value: value}
}

func (t CSRFToken) String() string { return t.value }

// IsZero reports whether the token was never generated.
func (t CSRFToken) IsZero() bool { return t.value == "" }
