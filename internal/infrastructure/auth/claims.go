package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"uyadmin.io/cli/internal/core/domain"
)

// ParseClaims decodes the claims of a backend token without verifying its
// signature. The signing key lives on the server; the CLI only reads the
// claims for display.
func ParseClaims(token string) (*domain.TokenClaims, error) {
	if token == "" {
		return nil, domain.ErrNotLoggedIn
	}

	claims := &domain.TokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to parse token claims: %w", err)
	}
	return claims, nil
}
