package handler

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/olopez/tasknest/internal/api/http/middleware"
	"github.com/olopez/tasknest/internal/logger"
	"github.com/olopez/tasknest/internal/model"
)

const sessionCookieTTL = 30 * 24 * time.Hour

// AuthService is the credential lifecycle the handlers drive.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (model.User, string, error)
	Login(ctx context.Context, email, password string) (model.User, string, error)
	Profile(ctx context.Context, id uuid.UUID) (model.User, error)
	VerifyToken(ctx context.Context, token string) (model.User, error)
	VerifyEmail(ctx context.Context, token string) (model.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
}

// Auth handles the authentication endpoints.
type Auth struct {
	service AuthService
	logger  *logger.Logger
}

func NewAuth(service AuthService, logger *logger.Logger) *Auth {
	return &Auth{
		service: service,
		logger:  logger,
	}
}

type sessionResponse struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	IsVerified bool      `json:"isVerified"`
	Token      string    `json:"token"`
}

func newSessionResponse(user model.User, token string) sessionResponse {
	return sessionResponse{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		IsVerified: user.IsVerified,
		Token:      token,
	}
}

func (a *Auth) Register(c fiber.Ctx) error {
	var req registerRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	user, token, err := a.service.Register(c.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return handleError(c, err)
	}

	c.Cookie(sessionCookie(token))

	return c.Status(fiber.StatusCreated).JSON(newSessionResponse(user, token))
}

func (a *Auth) Login(c fiber.Ctx) error {
	var req loginRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	user, token, err := a.service.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		// Unknown email and wrong password stay distinct internally but
		// answer with one uniform message.
		if errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrInvalidCredentials) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": model.ErrInvalidCredentials.Error(),
			})
		}
		return handleError(c, err)
	}

	c.Cookie(sessionCookie(token))

	return c.Status(fiber.StatusOK).JSON(newSessionResponse(user, token))
}

func (a *Auth) Logout(c fiber.Ctx) error {
	c.Cookie(expiredSessionCookie())

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Logged out successfully",
	})
}

// Profile runs behind the gate. The gate only vouches for the
// signature; the record lookup happens here, so a token over a deleted
// user answers 404.
func (a *Auth) Profile(c fiber.Ctx) error {
	claims := c.Locals(middleware.ClaimsKey).(model.SessionClaims)

	user, err := a.service.Profile(c.Context(), claims.UserID)
	if err != nil {
		return handleError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(user.Profile())
}

// VerifyToken checks the presented token without requiring the gate, so
// clients can confirm session validity. Unlike the gate, this endpoint
// reads the Authorization header only.
func (a *Auth) VerifyToken(c fiber.Ctx) error {
	token := bearerToken(c)
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "No token provided",
		})
	}

	user, err := a.service.VerifyToken(c.Context(), token)
	if err != nil {
		return handleError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(user.Profile())
}

func (a *Auth) VerifyEmail(c fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Verification token is required",
		})
	}

	user, err := a.service.VerifyEmail(c.Context(), token)
	if err != nil {
		// A consumed or unknown verification token is a client mistake,
		// not an authentication failure.
		return c.Status(errorStatusVerifyEmail(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Email verified successfully",
		"user":    user.Profile(),
	})
}

func (a *Auth) RequestPasswordReset(c fiber.Ctx) error {
	var req requestPasswordResetRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := a.service.RequestPasswordReset(c.Context(), req.Email); err != nil {
		return handleError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Password reset email sent",
	})
}

func (a *Auth) ResetPassword(c fiber.Ctx) error {
	token := c.Params("token")

	var req resetPasswordRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := a.service.ResetPassword(c.Context(), token, req.Password); err != nil {
		return handleError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Password reset successfully",
	})
}

func bearerToken(c fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

func sessionCookie(token string) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     "token",
		Value:    token,
		Expires:  time.Now().Add(sessionCookieTTL),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteNoneMode,
	}
}

func expiredSessionCookie() *fiber.Cookie {
	return &fiber.Cookie{
		Name:     "token",
		Value:    "",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteNoneMode,
	}
}
