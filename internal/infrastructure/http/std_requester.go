package httpinfra

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"uyadmin.io/cli/internal/core/domain"
	httpdomain "uyadmin.io/cli/internal/core/domain/http"
	httpports "uyadmin.io/cli/internal/core/ports/http"
)

// HeaderRequestID carries a per-dispatch correlation id.
const HeaderRequestID = "X-Request-ID"

// StdHttpRequester dispatches request descriptors over net/http. Each call is a
// single attempt; retry decisions belong to the authenticated client.
type StdHttpRequester struct {
	endpoint httpdomain.BackendEndpoint
	client   *http.Client
	limiter  *rate.Limiter
	logger   logrus.FieldLogger
}

// Option configures a StdHttpRequester.
type Option func(*StdHttpRequester)

// WithRateLimit caps outgoing dispatches; perSecond <= 0 disables the limit.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(r *StdHttpRequester) {
		if perSecond <= 0 {
			r.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithLogger sets the logger used for per-dispatch debug lines.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(r *StdHttpRequester) {
		r.logger = logger
	}
}

// WithHTTPClient replaces the underlying client, e.g. with an httptest one.
func WithHTTPClient(client *http.Client) Option {
	return func(r *StdHttpRequester) {
		r.client = client
	}
}

func NewStdHttpRequester(endpoint httpdomain.BackendEndpoint, timeout time.Duration, opts ...Option) *StdHttpRequester {
	r := &StdHttpRequester{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(rate.Inf, 0),
		logger:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Endpoint returns the backend target.
func (r *StdHttpRequester) Endpoint() httpdomain.BackendEndpoint {
	return r.endpoint
}

// CloseIdleConnections drops kept-alive connections to the backend.
func (r *StdHttpRequester) CloseIdleConnections() {
	r.client.CloseIdleConnections()
}

func (r *StdHttpRequester) Do(ctx context.Context, req *httpdomain.Request) (*httpdomain.Response, error) {
	fullURL, err := joinURL(r.endpoint.BaseURL, req.Path, req.Query)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid request URL: %w", domain.ErrRequestNotSent, err)
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %w", domain.ErrRequestNotSent, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, req.BodyReader())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", domain.ErrRequestNotSent, err)
	}

	requestID := uuid.NewString()
	defaults := map[string]string{
		"Accept":        "application/json",
		HeaderRequestID: requestID,
	}
	if r.endpoint.UserAgent != "" {
		defaults["User-Agent"] = r.endpoint.UserAgent
	}
	httpReq.Header = MergeHeaders(defaults, req.Header)

	start := time.Now()
	resp, err := r.client.Do(httpReq)
	if err != nil {
		r.logger.WithFields(logrus.Fields{
			"method":     req.Method,
			"path":       req.Path,
			"request_id": requestID,
		}).WithError(err).Debug("request failed")
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"method":     req.Method,
		"path":       req.Path,
		"status":     resp.StatusCode,
		"duration":   time.Since(start).Round(time.Millisecond),
		"request_id": requestID,
		"retried":    req.Retried(),
	}).Debug("request dispatched")

	return &httpdomain.Response{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   body,
	}, nil
}

func joinURL(base, p string, q map[string]string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("base URL %q must be absolute", base)
	}
	u.Path = joinPath(u.Path, p)
	if len(q) > 0 {
		vals := u.Query()
		for k, v := range q {
			vals.Set(k, v)
		}
		u.RawQuery = vals.Encode()
	}
	return u.String(), nil
}

func joinPath(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	if a[len(a)-1] == '/' {
		a = a[:len(a)-1]
	}
	if b[0] != '/' {
		b = "/" + b
	}
	return a + b
}

var _ httpports.Transport = (*StdHttpRequester)(nil)
