package httpdomain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Request is the outgoing request descriptor. It lives for a single call and is
// replayed at most once after a token refresh.
type Request struct {
	Method string
	Path   string
	Query  map[string]string
	Header http.Header
	// Body is kept as bytes so the descriptor can be dispatched twice.
	Body []byte

	retried bool
}

// NewRequest creates a descriptor without a body.
func NewRequest(method, path string) *Request {
	return &Request{
		Method: method,
		Path:   path,
		Header: make(http.Header),
	}
}

// NewJSONRequest creates a descriptor carrying v encoded as JSON.
func NewJSONRequest(method, path string, v any) (*Request, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req := NewRequest(method, path)
	req.Header.Set("Content-Type", "application/json")
	req.Body = data
	return req, nil
}

// NewRawRequest creates a descriptor with a pre-encoded body, e.g. multipart.
func NewRawRequest(method, path, contentType string, body []byte) *Request {
	req := NewRequest(method, path)
	req.Header.Set("Content-Type", contentType)
	req.Body = body
	return req
}

// Retried reports whether the descriptor already went through a refresh cycle.
func (r *Request) Retried() bool {
	return r.retried
}

// MarkRetried flags the descriptor as replayed.
func (r *Request) MarkRetried() {
	r.retried = true
}

// HasAuthorization reports whether an Authorization header is set.
func (r *Request) HasAuthorization() bool {
	return r.Header.Get("Authorization") != ""
}

// SetBearer sets (or overwrites) the bearer Authorization header.
func (r *Request) SetBearer(token string) {
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	r.Header.Set("Authorization", "Bearer "+token)
}

// BodyReader returns a fresh reader over the body, or nil.
func (r *Request) BodyReader() io.Reader {
	if r.Body == nil {
		return nil
	}
	return bytes.NewReader(r.Body)
}
