package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"uyadmin.io/cli/internal/core/domain"
	httpdomain "uyadmin.io/cli/internal/core/domain/http"
	httpports "uyadmin.io/cli/internal/core/ports/http"
)

// RefreshPath is the backend's token refresh endpoint.
const RefreshPath = "/accounts/token/refresh/"

// ErrEmptyAccessToken is returned when the refresh endpoint answers 2xx without a token.
var ErrEmptyAccessToken = errors.New("refresh response carried no access token")

// HTTPTokenProvider exchanges a refresh token for a new access token. It talks
// to the raw transport so the refresh call never carries a bearer header and
// never triggers a refresh of its own.
type HTTPTokenProvider struct {
	transport httpports.Transport
}

// NewHTTPTokenProvider creates a new HTTP-based token provider
func NewHTTPTokenProvider(transport httpports.Transport) *HTTPTokenProvider {
	return &HTTPTokenProvider{transport: transport}
}

// RefreshToken calls POST /accounts/token/refresh/ with {refresh}.
func (p *HTTPTokenProvider) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	req, err := httpdomain.NewJSONRequest(http.MethodPost, RefreshPath, domain.TokenRefreshRequest{Refresh: refreshToken})
	if err != nil {
		return "", err
	}

	resp, err := p.transport.Do(ctx, req)
	if err != nil {
		return "", domain.TransportError(err)
	}
	if !resp.OK() {
		return "", &domain.RequestFailedError{Status: resp.Status, Body: resp.Body}
	}

	var tokenResp domain.TokenRefreshResponse
	if err := resp.DecodeJSON(&tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode refresh response: %w", err)
	}
	if tokenResp.Access == "" {
		return "", ErrEmptyAccessToken
	}
	return tokenResp.Access, nil
}
