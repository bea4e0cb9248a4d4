// Package password provides one-way hashing and verification of account
// passwords using bcrypt. Each hash embeds its own random salt, so two hashes
// of the same plaintext are never equal and must only be compared via Verify.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt cost used when none is configured. Cost 12 keeps a
// single hash above ~100ms on commodity hardware.
const DefaultCost = 12

// Hasher hashes plaintext passwords and verifies candidates against stored
// hashes.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// BcryptHasher is a bcrypt-backed Hasher with a fixed cost factor.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher with the given cost. Costs outside bcrypt's
// supported range fall back to DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns the salted bcrypt hash of plaintext. A non-nil error means the
// password could not be hashed (e.g. it exceeds bcrypt's 72-byte input limit)
// and the caller must abort the operation rather than store anything.
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches the stored hash. Malformed hashes
// verify as false; they are indistinguishable from a wrong password.
func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
