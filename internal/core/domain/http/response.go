package httpdomain

import (
	"encoding/json"
	"net/http"
)

// Response is a fully read backend answer.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Unauthorized reports a 401 status.
func (r *Response) Unauthorized() bool {
	return r.Status == http.StatusUnauthorized
}

// DecodeJSON unmarshals the body into v. An empty body leaves v untouched.
func (r *Response) DecodeJSON(v any) error {
	if len(r.Body) == 0 {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}
