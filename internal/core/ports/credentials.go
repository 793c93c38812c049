package ports

import "context"

// CredentialStore holds the token pair under fixed keys. Get returns "" for a
// missing key.
type CredentialStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Clear() error
}

// TokenRefresher obtains a usable access token after the backend rejected
// staleToken. It returns domain.ErrUnauthorized when the session cannot be
// recovered, after clearing stored credentials.
type TokenRefresher interface {
	Refresh(ctx context.Context, staleToken string) (string, error)
}

// TokenProvider calls the backend's refresh endpoint.
type TokenProvider interface {
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
}
