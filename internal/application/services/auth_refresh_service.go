package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"uyadmin.io/cli/internal/core/domain"
	"uyadmin.io/cli/internal/core/ports"
)

// DefaultRefreshTimeout bounds a shared refresh call.
const DefaultRefreshTimeout = 15 * time.Second

const refreshFlightKey = "refresh"

// AuthRefreshService coordinates access-token refreshes. Concurrent callers
// that observe a 401 while a refresh is pending share that refresh and resume
// with its outcome.
type AuthRefreshService struct {
	provider ports.TokenProvider
	store    ports.CredentialStore
	timeout  time.Duration
	logger   logrus.FieldLogger

	group singleflight.Group
}

// NewAuthRefreshService creates a refresh coordinator. A zero timeout selects
// DefaultRefreshTimeout.
func NewAuthRefreshService(
	provider ports.TokenProvider,
	store ports.CredentialStore,
	timeout time.Duration,
	logger logrus.FieldLogger,
) *AuthRefreshService {
	if timeout <= 0 {
		timeout = DefaultRefreshTimeout
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AuthRefreshService{
		provider: provider,
		store:    store,
		timeout:  timeout,
		logger:   logger,
	}
}

// Refresh returns an access token to replay a request that was rejected while
// carrying staleToken. If storage already holds a different token, another
// request refreshed in the meantime and that token is returned as is. An empty
// staleToken means the request did not carry a stored token and always
// refreshes.
func (s *AuthRefreshService) Refresh(ctx context.Context, staleToken string) (string, error) {
	// The flight outlives the first caller's cancellation; every waiter still
	// gives up on its own context.
	flightCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(refreshFlightKey, func() (interface{}, error) {
		return s.refresh(flightCtx, staleToken)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		if res.Shared {
			s.logger.Debug("joined pending token refresh")
		}
		return res.Val.(string), nil
	}
}

func (s *AuthRefreshService) refresh(ctx context.Context, staleToken string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	current, err := s.store.Get(domain.KeyAccessToken)
	if staleToken != "" && err == nil && current != "" && current != staleToken {
		s.logger.Debug("access token already refreshed by a concurrent request")
		return current, nil
	}

	refreshToken, err := s.store.Get(domain.KeyRefreshToken)
	if err != nil {
		s.logger.WithError(err).Warn("failed to read refresh token")
		s.expire()
		return "", domain.ErrUnauthorized
	}
	if refreshToken == "" {
		s.logger.Info("no refresh token stored, session expired")
		s.expire()
		return "", domain.ErrUnauthorized
	}

	access, err := s.provider.RefreshToken(ctx, refreshToken)
	if err != nil {
		s.logger.WithError(err).Warn("token refresh failed, session expired")
		s.expire()
		return "", domain.ErrUnauthorized
	}

	if err := s.store.Set(domain.KeyAccessToken, access); err != nil {
		// The token is still valid for this replay.
		s.logger.WithError(err).Warn("failed to persist refreshed access token")
	}

	s.logger.WithField("token", domain.MaskToken(access)).Debug("access token refreshed")
	return access, nil
}

func (s *AuthRefreshService) expire() {
	if err := s.store.Clear(); err != nil {
		s.logger.WithError(err).Warn("failed to clear stored credentials")
	}
}

var _ ports.TokenRefresher = (*AuthRefreshService)(nil)
