package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uyadmin.io/cli/internal/core/domain"
)

func signedToken(t *testing.T, claims domain.TokenClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-side-secret"))
	require.NoError(t, err)
	return token
}

func TestParseClaims(t *testing.T) {
	exp := time.Now().Add(5 * time.Minute).Truncate(time.Second)
	token := signedToken(t, domain.TokenClaims{
		UserID:    42,
		Username:  "admin",
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})

	claims, err := ParseClaims(token)

	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "access", claims.TokenType)
	assert.True(t, exp.Equal(claims.ExpiresAtTime()))
	assert.False(t, claims.IsExpired())
}

func TestParseClaims_ExpiredTokenStillParses(t *testing.T) {
	token := signedToken(t, domain.TokenClaims{
		UserID:    1,
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	claims, err := ParseClaims(token)

	require.NoError(t, err)
	assert.True(t, claims.IsExpired())
}

func TestParseClaims_Errors(t *testing.T) {
	_, err := ParseClaims("")
	assert.ErrorIs(t, err, domain.ErrNotLoggedIn)

	_, err = ParseClaims("not-a-jwt")
	assert.Error(t, err)
}
