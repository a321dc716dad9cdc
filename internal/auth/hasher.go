package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher defines the minimal hashing interface (abstract so we can
// swap to argon2 later).
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(hash, plaintext string) bool
}

// BcryptHasher implementation.
type BcryptHasher struct{ Cost int }

// DefaultHasher returns a bcrypt hasher at cost 10, matching the work factor
// the recovery flow was provisioned for.
func DefaultHasher() BcryptHasher { return BcryptHasher{Cost: 10} }

func (b BcryptHasher) Hash(plaintext string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify reports whether plaintext matches hash. Malformed hashes simply
// yield false, never a panic.
func (b BcryptHasher) Verify(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
