package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByVerificationToken(ctx context.Context, token string) (User, error)
	// GetByResetToken returns the user holding the given reset token,
	// filtered to tokens whose stored expiry is still in the future.
	GetByResetToken(ctx context.Context, token string, now time.Time) (User, error)
	Create(ctx context.Context, user User) (User, error)
	Save(ctx context.Context, user User) (User, error)
}

// User represents a stored user with credential material.
//
// A user is either pending verification (VerificationToken set,
// IsVerified false) or verified (VerificationToken nil, IsVerified true).
// PasswordResetToken and PasswordResetExpires are set and cleared
// together; a pending reset is superseded by any newer reset request.
type User struct {
	ID                   uuid.UUID
	Username             string
	Email                string
	PasswordHash         string
	IsVerified           bool
	VerificationToken    *string
	PasswordResetToken   *string
	PasswordResetExpires *time.Time
	ProfileImage         *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Profile is the public view of a user. Never carries the password hash
// or any token state.
type Profile struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	IsVerified   bool      `json:"isVerified"`
	ProfileImage *string   `json:"profileImage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Profile returns the public fields of the user.
func (u User) Profile() Profile {
	return Profile{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		IsVerified:   u.IsVerified,
		ProfileImage: u.ProfileImage,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
