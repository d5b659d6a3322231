package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/olopez/tasknest/internal/logger"
	"github.com/olopez/tasknest/internal/model"
	"github.com/olopez/tasknest/internal/security"
	"github.com/olopez/tasknest/internal/token"
)

// Auth owns the credential lifecycle: registration with email
// verification, login, and the password-reset flow.
type Auth struct {
	userStore    model.UserStore
	tokenManager model.TokenManager
	hasher       model.PasswordHasher
	dispatcher   model.Dispatcher
	logger       *logger.Logger
}

func NewAuth(
	userStore model.UserStore,
	tokenManager model.TokenManager,
	hasher model.PasswordHasher,
	dispatcher model.Dispatcher,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		userStore:    userStore,
		tokenManager: tokenManager,
		hasher:       hasher,
		dispatcher:   dispatcher,
		logger:       logger,
	}
}

// Register creates an unverified user, emails a verification link and
// returns the stored user together with a session token. A failure to
// send the email does not fail registration; the token stays stored so
// verification can be retried out of band.
func (a *Auth) Register(ctx context.Context, username, email, password string) (model.User, string, error) {
	a.logger.Debug("Auth service: starting user registration",
		"email", email)

	existingUser, err := a.userStore.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		a.logger.Error("Auth service: failed to get user by email",
			"email", email,
			"error", err.Error())
		return model.User{}, "", fmt.Errorf("failed to get user by email: %w", err)
	}

	if existingUser.ID != uuid.Nil {
		a.logger.Info("Auth service: user already exists",
			"email", email)
		return model.User{}, "", model.ErrEmailTaken
	}

	passwordHash, err := a.hasher.Hash(password)
	if err != nil {
		a.logger.Error("Auth service: failed to hash password",
			"email", email,
			"error", err.Error())
		return model.User{}, "", fmt.Errorf("failed to hash password: %w", err)
	}

	verificationToken, err := security.GenerateVerificationToken()
	if err != nil {
		a.logger.Error("Auth service: failed to generate verification token",
			"email", email,
			"error", err.Error())
		return model.User{}, "", fmt.Errorf("failed to generate verification token: %w", err)
	}

	user := model.User{
		ID:                uuid.New(),
		Username:          username,
		Email:             email,
		PasswordHash:      passwordHash,
		IsVerified:        false,
		VerificationToken: &verificationToken,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}

	user, err = a.userStore.Create(ctx, user)
	if err != nil {
		if errors.Is(err, model.ErrEmailTaken) {
			return model.User{}, "", model.ErrEmailTaken
		}
		a.logger.Error("Auth service: failed to create user",
			"email", email,
			"error", err.Error())
		return model.User{}, "", fmt.Errorf("failed to create user: %w", err)
	}

	if err := a.dispatcher.SendVerificationEmail(ctx, user.Email, user.Username, verificationToken); err != nil {
		a.logger.Error("Auth service: failed to send verification email",
			"email", email,
			"error", err.Error())
	}

	sessionToken, err := a.tokenManager.GenerateSessionToken(user)
	if err != nil {
		a.logger.Error("Auth service: failed to generate session token",
			"user_id", user.ID,
			"error", err.Error())
		return model.User{}, "", fmt.Errorf("failed to generate session token: %w", err)
	}

	a.logger.Info("Auth service: user registered successfully",
		"user_id", user.ID,
		"email", email)

	return user, sessionToken, nil
}

// Login verifies the password for the given email and returns the user
// with a fresh session token. Unknown email (ErrNotFound) and wrong
// password (ErrInvalidCredentials) stay distinct here; the HTTP boundary
// collapses them into one uniform response.
func (a *Auth) Login(ctx context.Context, email, password string) (model.User, string, error) {
	a.logger.Debug("Auth service: starting user login",
		"email", email)

	user, err := a.userStore.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		a.logger.Info("Auth service: login for unknown email",
			"email", email)
		return model.User{}, "", model.ErrNotFound
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get user by email",
			"email", email,
			"error", err.Error())
		return model.User{}, "", fmt.Errorf("failed to get user by email: %w", err)
	}

	if !a.hasher.Verify(password, user.PasswordHash) {
		a.logger.Info("Auth service: password mismatch",
			"user_id", user.ID)
		return model.User{}, "", model.ErrInvalidCredentials
	}

	sessionToken, err := a.tokenManager.GenerateSessionToken(user)
	if err != nil {
		a.logger.Error("Auth service: failed to generate session token",
			"user_id", user.ID,
			"error", err.Error())
		return model.User{}, "", fmt.Errorf("failed to generate session token: %w", err)
	}

	a.logger.Info("Auth service: user logged in successfully",
		"user_id", user.ID)

	return user, sessionToken, nil
}

// Profile returns the user stored under the given id.
func (a *Auth) Profile(ctx context.Context, id uuid.UUID) (model.User, error) {
	user, err := a.userStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, model.ErrNotFound
		}
		a.logger.Error("Auth service: failed to get user by id",
			"user_id", id,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

// VerifyToken checks a session token and resolves its subject. A valid
// signature over a since-deleted user is still invalid.
func (a *Auth) VerifyToken(ctx context.Context, sessionToken string) (model.User, error) {
	claims, err := a.tokenManager.ParseSessionToken(sessionToken)
	if err != nil {
		return model.User{}, model.ErrInvalidToken
	}

	user, err := a.userStore.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			a.logger.Info("Auth service: session token for missing user",
				"user_id", claims.UserID)
			return model.User{}, model.ErrInvalidToken
		}
		a.logger.Error("Auth service: failed to get user by id",
			"user_id", claims.UserID,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// VerifyEmail marks the user holding the given verification token as
// verified and clears the token, making it single-use.
func (a *Auth) VerifyEmail(ctx context.Context, verificationToken string) (model.User, error) {
	a.logger.Debug("Auth service: verifying email")

	user, err := a.userStore.GetByVerificationToken(ctx, verificationToken)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, model.ErrInvalidToken
		}
		a.logger.Error("Auth service: failed to get user by verification token",
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to get user by verification token: %w", err)
	}

	user.IsVerified = true
	user.VerificationToken = nil

	user, err = a.userStore.Save(ctx, user)
	if err != nil {
		a.logger.Error("Auth service: failed to save verified user",
			"user_id", user.ID,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to save user: %w", err)
	}

	a.logger.Info("Auth service: email verified successfully",
		"user_id", user.ID)

	return user, nil
}

// RequestPasswordReset issues a reset token for the given email and
// mails a reset link. A newer request supersedes any pending one. Mail
// failures are logged but do not fail the request; the stored token
// stays valid.
func (a *Auth) RequestPasswordReset(ctx context.Context, email string) error {
	a.logger.Debug("Auth service: starting password reset",
		"email", email)

	user, err := a.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			a.logger.Info("Auth service: password reset for unknown email",
				"email", email)
			return model.ErrNotFound
		}
		a.logger.Error("Auth service: failed to get user by email",
			"email", email,
			"error", err.Error())
		return fmt.Errorf("failed to get user by email: %w", err)
	}

	resetToken, err := a.tokenManager.GenerateResetToken(user.ID)
	if err != nil {
		a.logger.Error("Auth service: failed to generate reset token",
			"user_id", user.ID,
			"error", err.Error())
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	expiresAt := time.Now().Add(token.ResetTTL)
	user.PasswordResetToken = &resetToken
	user.PasswordResetExpires = &expiresAt

	user, err = a.userStore.Save(ctx, user)
	if err != nil {
		a.logger.Error("Auth service: failed to save reset token",
			"user_id", user.ID,
			"error", err.Error())
		return fmt.Errorf("failed to save user: %w", err)
	}

	if err := a.dispatcher.SendPasswordResetEmail(ctx, user.Email, user.Username, resetToken); err != nil {
		a.logger.Error("Auth service: failed to send password reset email",
			"user_id", user.ID,
			"error", err.Error())
	}

	a.logger.Info("Auth service: password reset requested",
		"user_id", user.ID)

	return nil
}

// ResetPassword consumes a reset token and replaces the password. The
// token must parse, must match the one currently stored for its subject
// and must not be past its stored expiry.
func (a *Auth) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	a.logger.Debug("Auth service: resetting password")

	userID, err := a.tokenManager.ParseResetToken(resetToken)
	if err != nil {
		return model.ErrInvalidToken
	}

	user, err := a.userStore.GetByResetToken(ctx, resetToken, time.Now())
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			a.logger.Info("Auth service: reset token not on record",
				"user_id", userID)
			return model.ErrResetTokenInvalid
		}
		a.logger.Error("Auth service: failed to get user by reset token",
			"user_id", userID,
			"error", err.Error())
		return fmt.Errorf("failed to get user by reset token: %w", err)
	}

	if user.ID != userID {
		a.logger.Info("Auth service: reset token subject mismatch",
			"user_id", userID)
		return model.ErrResetTokenInvalid
	}

	passwordHash, err := a.hasher.Hash(newPassword)
	if err != nil {
		a.logger.Error("Auth service: failed to hash password",
			"user_id", user.ID,
			"error", err.Error())
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = passwordHash
	user.PasswordResetToken = nil
	user.PasswordResetExpires = nil

	if _, err := a.userStore.Save(ctx, user); err != nil {
		a.logger.Error("Auth service: failed to save new password",
			"user_id", user.ID,
			"error", err.Error())
		return fmt.Errorf("failed to save user: %w", err)
	}

	a.logger.Info("Auth service: password reset completed",
		"user_id", user.ID)

	return nil
}
