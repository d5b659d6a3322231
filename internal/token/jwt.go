package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/olopez/tasknest/internal/model"
)

// Claims represents JWT claims for both session and reset tokens. Session
// tokens carry the public identity; reset tokens carry only the user ID
// and a purpose tag so they cannot be replayed as a login session.
type Claims struct {
	jwt.RegisteredClaims
	UserID   uuid.UUID `json:"id"`
	Username string    `json:"username,omitempty"`
	Email    string    `json:"email,omitempty"`
	Purpose  string    `json:"purpose,omitempty"`
}

// JWT implements model.TokenManager backed by symmetric HMAC.
type JWT struct {
	secretKey string
}

// NewJWT creates a new JWT token manager with the provided secret key.
func NewJWT(secretKey string) model.TokenManager {
	return &JWT{secretKey: secretKey}
}

const (
	// Session tokens are long-lived; a persistent login is acceptable for
	// this service and the gate trusts the claims for the token lifetime.
	sessionTTL = 30 * 24 * time.Hour
	// Reset tokens expire in exactly one hour. The same window is enforced
	// again against the stored expiry when the token is consumed.
	ResetTTL = time.Hour

	purposeReset = "password_reset"
)

// GenerateSessionToken creates a signed session token for the user.
func (j *JWT) GenerateSessionToken(user model.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, nil
}

// GenerateResetToken creates a signed one-hour password-reset token.
func (j *JWT) GenerateResetToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ResetTTL)),
		},
		UserID:  userID,
		Purpose: purposeReset,
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign reset token: %w", err)
	}

	return tokenString, nil
}

// ParseSessionToken validates a session token and extracts its identity
// claims. Reset tokens are rejected here regardless of validity.
func (j *JWT) ParseSessionToken(tokenString string) (model.SessionClaims, error) {
	claims, err := j.parse(tokenString)
	if err != nil {
		return model.SessionClaims{}, err
	}
	if claims.Purpose != "" {
		return model.SessionClaims{}, fmt.Errorf("%w: unexpected token purpose", model.ErrInvalidToken)
	}

	return model.SessionClaims{
		UserID:   claims.UserID,
		Username: claims.Username,
		Email:    claims.Email,
	}, nil
}

// ParseResetToken validates a reset token and extracts the user ID.
// Session tokens are rejected here regardless of validity.
func (j *JWT) ParseResetToken(tokenString string) (uuid.UUID, error) {
	claims, err := j.parse(tokenString)
	if err != nil {
		return uuid.Nil, err
	}
	if claims.Purpose != purposeReset {
		return uuid.Nil, fmt.Errorf("%w: token purpose mismatch", model.ErrInvalidToken)
	}

	return claims.UserID, nil
}

func (j *JWT) parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, model.ErrInvalidToken
	}
	return claims, nil
}
