package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"uyadmin.io/cli/internal/core/domain"
	httpdomain "uyadmin.io/cli/internal/core/domain/http"
	"uyadmin.io/cli/internal/core/ports"
	httpports "uyadmin.io/cli/internal/core/ports/http"
	"uyadmin.io/cli/internal/infrastructure/auth"
)

const (
	LoginPath    = "/accounts/login/"
	RegisterPath = "/accounts/register/"
)

// AuthService establishes and ends sessions. Login and register talk to the
// raw transport: a 401 there means bad credentials, not an expired token.
type AuthService struct {
	gateway   *Gateway
	transport httpports.Transport
	store     ports.CredentialStore
	provider  ports.TokenProvider
	logger    logrus.FieldLogger
}

func NewAuthService(
	transport httpports.Transport,
	store ports.CredentialStore,
	provider ports.TokenProvider,
	logger logrus.FieldLogger,
) *AuthService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AuthService{
		gateway:   &Gateway{validate: newValidator()},
		transport: transport,
		store:     store,
		provider:  provider,
		logger:    logger,
	}
}

// Login exchanges credentials for a token pair and stores both tokens.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.LoginResponse, error) {
	payload := domain.LoginRequest{Username: username, Password: password}
	var resp domain.LoginResponse
	if err := s.post(ctx, LoginPath, payload, &resp); err != nil {
		return nil, err
	}
	if resp.Access == "" || resp.Refresh == "" {
		return nil, fmt.Errorf("login response is missing tokens")
	}

	creds := domain.Credentials{AccessToken: resp.Access, RefreshToken: resp.Refresh}
	if err := auth.SaveCredentials(s.store, creds); err != nil {
		return nil, fmt.Errorf("failed to store credentials: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"username": username,
		"token":    domain.MaskToken(resp.Access),
	}).Info("logged in")
	return &resp, nil
}

// Register creates a backend account. It does not log in.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (map[string]any, error) {
	out := map[string]any{}
	if err := s.post(ctx, RegisterPath, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Logout forgets the stored token pair.
func (s *AuthService) Logout() error {
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	s.logger.Info("logged out")
	return nil
}

// RefreshToken trades the stored refresh token for a new access token on
// demand. A rejected refresh token ends the session.
func (s *AuthService) RefreshToken(ctx context.Context) (string, error) {
	creds, err := auth.LoadCredentials(s.store)
	if err != nil {
		return "", fmt.Errorf("failed to read credentials: %w", err)
	}
	if creds.RefreshToken == "" {
		return "", domain.ErrNotLoggedIn
	}

	access, err := s.provider.RefreshToken(ctx, creds.RefreshToken)
	if err != nil {
		if domain.StatusOf(err) == http.StatusUnauthorized {
			_ = s.store.Clear()
			return "", domain.ErrUnauthorized
		}
		return "", err
	}

	if err := s.store.Set(domain.KeyAccessToken, access); err != nil {
		return "", fmt.Errorf("failed to store access token: %w", err)
	}
	return access, nil
}

// Credentials returns the stored token pair.
func (s *AuthService) Credentials() (domain.Credentials, error) {
	return auth.LoadCredentials(s.store)
}

func (s *AuthService) post(ctx context.Context, path string, payload, out any) error {
	if err := s.gateway.Validate(payload); err != nil {
		return err
	}

	req, err := httpdomain.NewJSONRequest(http.MethodPost, path, payload)
	if err != nil {
		return err
	}
	resp, err := s.transport.Do(ctx, req)
	if err != nil {
		return domain.TransportError(err)
	}
	if !resp.OK() {
		return &domain.RequestFailedError{Status: resp.Status, Body: resp.Body}
	}
	return resp.DecodeJSON(out)
}
