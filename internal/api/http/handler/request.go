package handler

import (
	"errors"
	"regexp"
)

const (
	minUsernameLen = 5
	minPasswordLen = 6
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r registerRequest) Validate() error {
	if len(r.Username) < minUsernameLen {
		return errors.New("username must be at least 5 characters long")
	}
	if !emailRe.MatchString(r.Email) {
		return errors.New("email must be a valid email address")
	}
	if len(r.Password) < minPasswordLen {
		return errors.New("password must be at least 6 characters long")
	}
	return nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() error {
	if !emailRe.MatchString(r.Email) {
		return errors.New("email must be a valid email address")
	}
	if r.Password == "" {
		return errors.New("password is required")
	}
	return nil
}

type requestPasswordResetRequest struct {
	Email string `json:"email"`
}

func (r requestPasswordResetRequest) Validate() error {
	if !emailRe.MatchString(r.Email) {
		return errors.New("email must be a valid email address")
	}
	return nil
}

type resetPasswordRequest struct {
	Password string `json:"newPassword"`
}

func (r resetPasswordRequest) Validate() error {
	if len(r.Password) < minPasswordLen {
		return errors.New("password must be at least 6 characters long")
	}
	return nil
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Done        *bool   `json:"done"`
}

func (r updateTaskRequest) Validate() error {
	if r.Title != nil && *r.Title == "" {
		return errors.New("title must not be empty")
	}
	return nil
}
