package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"uyadmin.io/cli/internal/core/domain"
	httpdomain "uyadmin.io/cli/internal/core/domain/http"
	"uyadmin.io/cli/internal/core/ports"
	httpports "uyadmin.io/cli/internal/core/ports/http"
)

// AuthenticatedClient is the single choke point for backend calls. It attaches
// the stored access token and survives one expired-token event per request.
type AuthenticatedClient struct {
	transport httpports.Transport
	store     ports.CredentialStore
	refresher ports.TokenRefresher
	logger    logrus.FieldLogger
}

// NewAuthenticatedClient creates a new authenticated client
func NewAuthenticatedClient(
	transport httpports.Transport,
	store ports.CredentialStore,
	refresher ports.TokenRefresher,
	logger logrus.FieldLogger,
) *AuthenticatedClient {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AuthenticatedClient{
		transport: transport,
		store:     store,
		refresher: refresher,
		logger:    logger,
	}
}

// Send dispatches req and returns the response body of a 2xx answer.
//
// A 401 on a request that has not been replayed yet triggers one refresh
// followed by exactly one replay through the transport. Failures surface as
// domain.ErrUnauthorized, *domain.RequestFailedError or *domain.NetworkError.
func (c *AuthenticatedClient) Send(ctx context.Context, req *httpdomain.Request) ([]byte, error) {
	attached, err := c.attachToken(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.dispatch(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.OK() {
		return resp.Body, nil
	}
	if !resp.Unauthorized() || req.Retried() {
		return nil, &domain.RequestFailedError{Status: resp.Status, Body: resp.Body}
	}

	req.MarkRetried()
	c.logger.WithFields(logrus.Fields{
		"method": req.Method,
		"path":   req.Path,
	}).Debug("access token rejected, refreshing")

	token, err := c.refresher.Refresh(ctx, attached)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}

	req.SetBearer(token)
	resp, err = c.dispatch(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.OK() {
		return resp.Body, nil
	}
	return nil, &domain.RequestFailedError{Status: resp.Status, Body: resp.Body}
}

// attachToken sets the bearer header from storage unless the caller supplied
// one. It returns the token it attached, or "".
func (c *AuthenticatedClient) attachToken(req *httpdomain.Request) (string, error) {
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	if req.HasAuthorization() {
		return "", nil
	}

	token, err := c.store.Get(domain.KeyAccessToken)
	if err != nil {
		return "", fmt.Errorf("failed to read access token: %w", err)
	}
	if token != "" {
		req.SetBearer(token)
	}
	return token, nil
}

func (c *AuthenticatedClient) dispatch(ctx context.Context, req *httpdomain.Request) (*httpdomain.Response, error) {
	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		return nil, domain.TransportError(err)
	}
	return resp, nil
}

var _ httpports.Sender = (*AuthenticatedClient)(nil)
