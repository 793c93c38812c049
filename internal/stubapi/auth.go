package stubapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"uyadmin.io/cli/internal/core/domain"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	ctxAccountKey = "account"
)

var errTokenType = errors.New("wrong token type")

// RegisterUser creates an account directly, bypassing HTTP.
func (s *Server) RegisterUser(username, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[username]; exists {
		return fmt.Errorf("user %q already exists", username)
	}
	s.accounts[username] = &account{
		id:           s.allocID(),
		username:     username,
		email:        email,
		passwordHash: hash,
	}
	return nil
}

func (s *Server) issue(acc *account, tokenType string) (string, error) {
	ttl := s.cfg.AccessTTL
	if tokenType == tokenTypeRefresh {
		ttl = s.cfg.RefreshTTL
	}
	now := s.cfg.Clock()

	claims := domain.TokenClaims{
		UserID:    acc.id,
		Username:  acc.username,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   acc.username,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
}

func (s *Server) verify(token, tokenType string) (*domain.TokenClaims, error) {
	claims := &domain.TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.cfg.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.cfg.Clock))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.TokenType != tokenType {
		return nil, errTokenType
	}
	return claims, nil
}

func (s *Server) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return detail(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
		}

		claims, err := s.verify(parts[1], tokenTypeAccess)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"detail": "Given token not valid for any token type",
				"code":   "token_not_valid",
			})
		}

		s.mu.RLock()
		acc, ok := s.accounts[claims.Username]
		s.mu.RUnlock()
		if !ok {
			return detail(c, http.StatusUnauthorized, "User not found")
		}

		c.Set(ctxAccountKey, acc)
		return next(c)
	}
}

func currentAccount(c echo.Context) *account {
	acc, _ := c.Get(ctxAccountKey).(*account)
	return acc
}

func (s *Server) handleRegister(c echo.Context) error {
	var req domain.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "malformed body")
	}
	if req.Username == "" || req.Password == "" {
		return detail(c, http.StatusBadRequest, "username and password are required")
	}

	if err := s.RegisterUser(req.Username, req.Email, req.Password); err != nil {
		return c.JSON(http.StatusBadRequest, map[string][]string{
			"username": {"A user with that username already exists."},
		})
	}
	return c.JSON(http.StatusCreated, map[string]string{
		"username": req.Username,
		"email":    req.Email,
	})
}

func (s *Server) handleLogin(c echo.Context) error {
	var req domain.LoginRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "malformed body")
	}

	s.mu.RLock()
	acc, ok := s.accounts[req.Username]
	s.mu.RUnlock()
	if !ok || bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(req.Password)) != nil {
		return detail(c, http.StatusUnauthorized, "No active account found with the given credentials")
	}

	access, err := s.issue(acc, tokenTypeAccess)
	if err != nil {
		return err
	}
	refresh, err := s.issue(acc, tokenTypeRefresh)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, domain.LoginResponse{Access: access, Refresh: refresh})
}

func (s *Server) handleRefresh(c echo.Context) error {
	var req domain.TokenRefreshRequest
	if err := c.Bind(&req); err != nil || req.Refresh == "" {
		return detail(c, http.StatusBadRequest, "refresh is required")
	}

	claims, err := s.verify(req.Refresh, tokenTypeRefresh)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"detail": "Token is invalid or expired",
			"code":   "token_not_valid",
		})
	}

	s.mu.RLock()
	acc, ok := s.accounts[claims.Username]
	s.mu.RUnlock()
	if !ok {
		return detail(c, http.StatusUnauthorized, "User not found")
	}

	access, err := s.issue(acc, tokenTypeAccess)
	if err != nil {
		return err
	}
	s.refreshCalls.Add(1)
	return c.JSON(http.StatusOK, domain.TokenRefreshResponse{Access: access})
}
