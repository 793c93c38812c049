package httpports

import (
	"context"

	httpdomain "uyadmin.io/cli/internal/core/domain/http"
)

// Transport dispatches a request descriptor exactly once. It never retries and
// never touches credentials; a non-nil error means no response was received.
type Transport interface {
	Do(ctx context.Context, req *httpdomain.Request) (*httpdomain.Response, error)
}

// Sender is the authenticated entry point used by domain services.
type Sender interface {
	Send(ctx context.Context, req *httpdomain.Request) ([]byte, error)
}
