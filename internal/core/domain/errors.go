package domain

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrUnauthorized is the terminal authentication failure: the access token was
// rejected and no refresh was possible. Callers must treat the user as logged out.
var ErrUnauthorized = errors.New("session expired: log in again")

// ErrNotLoggedIn is returned by operations that need stored credentials when there are none.
var ErrNotLoggedIn = errors.New("not logged in")

// RequestFailedError reports a non-2xx answer from the backend, including a 401
// on a request that was already replayed once.
type RequestFailedError struct {
	Status int
	Body   []byte
}

func (e *RequestFailedError) Error() string {
	body := string(truncateUTF8(e.Body, 200))
	if len(body) < len(e.Body) {
		body += "..."
	}
	if body == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.Status, body)
}

// truncateUTF8 cuts b to at most n bytes without splitting a character.
func truncateUTF8(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	for n > 0 && !utf8.RuneStart(b[n]) {
		n--
	}
	return b[:n]
}

// ErrRequestNotSent marks transport errors raised before anything reached the
// wire, such as a malformed base URL.
var ErrRequestNotSent = errors.New("request not sent")

// NetworkError reports a transport-level failure (no connectivity, DNS, reset).
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// TransportError classifies an error returned by a transport. Failures that
// happened before dispatch are returned unchanged; the rest become *NetworkError.
func TransportError(err error) error {
	if err == nil || errors.Is(err, ErrRequestNotSent) {
		return err
	}
	return &NetworkError{Err: err}
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var rf *RequestFailedError
	if errors.As(err, &rf) {
		return rf.Status
	}
	return 0
}

// ValidationError wraps payload validation failures raised before a request is sent.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
