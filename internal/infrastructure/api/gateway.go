package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"uyadmin.io/cli/internal/core/domain"
	httpdomain "uyadmin.io/cli/internal/core/domain/http"
	httpports "uyadmin.io/cli/internal/core/ports/http"
)

// Gateway holds what every backend service shares: the authenticated sender
// and the payload validator.
type Gateway struct {
	sender   httpports.Sender
	validate *validator.Validate
}

// NewGateway creates a gateway over sender.
func NewGateway(sender httpports.Sender) *Gateway {
	return &Gateway{
		sender:   sender,
		validate: newValidator(),
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return strings.ToLower(field.Name)
		}
		return name
	})
	return v
}

// Validate checks payload against its validate tags and reports the first
// failing field as a *domain.ValidationError.
func (g *Gateway) Validate(payload any) error {
	err := g.validate.Struct(payload)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &domain.ValidationError{Field: fe.Field(), Reason: describeTag(fe)}
	}
	return fmt.Errorf("failed to validate payload: %w", err)
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "numeric":
		return "must be numeric"
	case "email":
		return "must be a valid email address"
	case "file":
		return fmt.Sprintf("file %q does not exist", fe.Value())
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gt":
		return "must be greater than " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}

// get sends a GET and decodes the JSON answer into out.
func (g *Gateway) get(ctx context.Context, path string, out any) error {
	body, err := g.sender.Send(ctx, httpdomain.NewRequest(http.MethodGet, path))
	if err != nil {
		return err
	}
	return decode(body, out)
}

// sendJSON validates payload, sends it as JSON and decodes the answer into out
// when out is not nil.
func (g *Gateway) sendJSON(ctx context.Context, method, path string, payload, out any) error {
	if err := g.Validate(payload); err != nil {
		return err
	}

	req, err := httpdomain.NewJSONRequest(method, path, payload)
	if err != nil {
		return err
	}
	body, err := g.sender.Send(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decode(body, out)
}

// send dispatches a prepared request and decodes the answer into out when out
// is not nil.
func (g *Gateway) send(ctx context.Context, req *httpdomain.Request, out any) error {
	body, err := g.sender.Send(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decode(body, out)
}

func decode(body []byte, out any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// getList fetches a collection. A body that is not a JSON array yields an
// empty slice.
func getList[T any](ctx context.Context, g *Gateway, path string) ([]T, error) {
	body, err := g.sender.Send(ctx, httpdomain.NewRequest(http.MethodGet, path))
	if err != nil {
		return nil, err
	}

	items := []T{}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return items, nil
	}
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("failed to decode list response: %w", err)
	}
	return items, nil
}
