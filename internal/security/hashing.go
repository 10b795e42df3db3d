package security

import (
	"golang.org/x/crypto/bcrypt"
)

// DummyHash is a fixed bcrypt digest verified against when a login targets a
// nonexistent account. Burning a real bcrypt comparison on that path keeps its
// wall-clock cost equal to the wrong-password path, so response timing cannot
// be used to enumerate accounts. The digest is of an unused throwaway string;
// no account can ever match it.
const DummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// Hasher hashes and verifies passwords using bcrypt. Callers must not log or
// persist plaintext passwords.
type Hasher struct {
	Cost int
}

// NewHasher returns a Hasher with the given bcrypt cost (4–31). Cost 12 is a
// reasonable default for interactive login.
func NewHasher(cost int) *Hasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &Hasher{Cost: cost}
}

// Hash produces a bcrypt hash of password suitable for storage.
func (h *Hasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare verifies password against the stored hash. bcrypt comparison runs in
// constant time relative to the outcome for fixed-length inputs. Returns nil on
// match; bcrypt.ErrMismatchedHashAndPassword or another error otherwise.
func (h *Hasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
