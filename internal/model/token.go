package model

import "github.com/google/uuid"

// SessionClaims is the identity carried by a verified session token.
type SessionClaims struct {
	UserID   uuid.UUID
	Username string
	Email    string
}

// TokenManager issues and verifies signed tokens. Session and reset
// tokens share the signing mechanism but carry a purpose tag, so one kind
// is never honored in place of the other.
type TokenManager interface {
	GenerateSessionToken(user User) (string, error)
	GenerateResetToken(userID uuid.UUID) (string, error)
	ParseSessionToken(token string) (SessionClaims, error)
	ParseResetToken(token string) (uuid.UUID, error)
}

// PasswordHasher performs one-way salted hashing with
// verification-by-recomputation. Verify treats malformed stored hashes as
// "no match", never as a failure.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}
