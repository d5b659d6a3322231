package model

import "errors"

// Domain errors. Handlers map these to HTTP statuses at the boundary.
var (
	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidToken covers malformed, tampered and expired signed tokens.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrResetTokenInvalid covers store-side reset failures: the token was
	// consumed, superseded by a newer request, or the stored expiry elapsed.
	ErrResetTokenInvalid = errors.New("reset token invalid or already used")

	ErrNoProfileImage = errors.New("user has no profile image")
)
