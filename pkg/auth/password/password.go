// Package password wraps bcrypt for one-way password hashing. The per-call
// salt is embedded in the output, and verification compares digests in
// constant time.
package password

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/bookmart-dev/bookmart/pkg/auth"
)

// Hasher hashes and verifies passwords with bcrypt.
type Hasher struct {
	cost int
}

var _ auth.PasswordHasher = (*Hasher)(nil)

// New creates a Hasher with the given cost. A cost of 0 selects
// bcrypt.DefaultCost.
func New(cost int) *Hasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash generates a salted hash of the plaintext.
func (h *Hasher) Hash(plaintext string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Verify reports whether plaintext matches the stored hash. A hash that is
// not valid bcrypt output verifies as false, indistinguishable from a wrong
// password.
func (h *Hasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
