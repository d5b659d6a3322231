package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/olopez/tasknest/internal/model"
)

// bcrypt cost 12 keeps hashing deliberately expensive.
const hashCost = 12

var _ model.PasswordHasher = (*BcryptHasher)(nil)

// BcryptHasher hashes passwords with bcrypt. Stateless; the salt is
// generated internally and embedded in the hash string.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher with the default cost.
func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: hashCost}
}

// Hash derives a salted hash from the plaintext password.
func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether the password matches the stored hash. A
// malformed stored hash is treated as a mismatch, never as a failure.
func (h *BcryptHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
