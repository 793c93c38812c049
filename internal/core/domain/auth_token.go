package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Storage keys of the credential pair.
const (
	KeyAccessToken  = "token"
	KeyRefreshToken = "refreshToken"
)

// Credentials is the access/refresh token pair held in client-side storage.
type Credentials struct {
	AccessToken  string
	RefreshToken string
}

// IsEmpty reports whether neither token is present.
func (c Credentials) IsEmpty() bool {
	return c.AccessToken == "" && c.RefreshToken == ""
}

// LoginRequest is the body of POST /accounts/login/.
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=1,max=150"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the answer of POST /accounts/login/.
type LoginResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// RegisterRequest is the body of POST /accounts/register/.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=150"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// TokenRefreshRequest is the body of POST /accounts/token/refresh/.
type TokenRefreshRequest struct {
	Refresh string `json:"refresh"`
}

// TokenRefreshResponse is the answer of POST /accounts/token/refresh/.
// The backend does not rotate refresh tokens.
type TokenRefreshResponse struct {
	Access string `json:"access"`
}

// TokenClaims are the claims carried by the backend's access and refresh tokens.
type TokenClaims struct {
	UserID    int    `json:"user_id"`
	Username  string `json:"username,omitempty"`
	TokenType string `json:"token_type"` // "access" or "refresh"
	jwt.RegisteredClaims
}

// ExpiresAtTime returns the expiry, or the zero time when the token has none.
func (c *TokenClaims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// IsExpired checks if the token has expired
func (c *TokenClaims) IsExpired() bool {
	exp := c.ExpiresAtTime()
	return !exp.IsZero() && time.Now().After(exp)
}

// MaskToken shortens a secret for display and logs.
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 10 {
		return "****"
	}
	return token[:6] + "..." + token[len(token)-4:]
}
