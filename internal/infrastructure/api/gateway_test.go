package api

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uyadmin.io/cli/internal/core/domain"
	httpdomain "uyadmin.io/cli/internal/core/domain/http"
)

type senderFunc func(ctx context.Context, req *httpdomain.Request) ([]byte, error)

func (f senderFunc) Send(ctx context.Context, req *httpdomain.Request) ([]byte, error) {
	return f(ctx, req)
}

func replying(body string) senderFunc {
	return func(context.Context, *httpdomain.Request) ([]byte, error) {
		return []byte(body), nil
	}
}

func TestGetList_NonArrayBodyIsEmpty(t *testing.T) {
	for _, body := range []string{``, `{}`, `{"detail":"paginated"}`, `null`, `"text"`} {
		t.Run(body, func(t *testing.T) {
			items, err := getList[domain.Category](context.Background(), NewGateway(replying(body)), "/uy/get_all_category/")
			require.NoError(t, err)
			assert.NotNil(t, items)
			assert.Empty(t, items)
		})
	}
}

func TestGetList_DecodesArray(t *testing.T) {
	items, err := getList[domain.Category](context.Background(), NewGateway(replying(` [{"id":1,"name":"Flats"}]`)), "/x/")

	require.NoError(t, err)
	assert.Equal(t, []domain.Category{{ID: 1, Name: "Flats"}}, items)
}

func TestGetList_PropagatesErrors(t *testing.T) {
	failing := senderFunc(func(context.Context, *httpdomain.Request) ([]byte, error) {
		return nil, &domain.RequestFailedError{Status: 500}
	})

	_, err := getList[domain.Category](context.Background(), NewGateway(failing), "/x/")

	assert.Equal(t, 500, domain.StatusOf(err))
}

func TestGateway_Validate(t *testing.T) {
	g := NewGateway(replying(""))

	assert.NoError(t, g.Validate(domain.CategoryForm{Name: "Flats"}))

	err := g.Validate(domain.CategoryForm{})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)
	assert.Equal(t, "is required", verr.Reason)

	err = g.Validate(domain.RegisterRequest{Username: "ali", Email: "not-an-email", Password: "long-enough"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Field)
}

func TestMultipartRequest(t *testing.T) {
	req, err := multipartRequest("POST", "/uy/create_schedule/", domain.PropertyForm{Title: "Loft", Price: "10"})

	require.NoError(t, err)
	assert.Contains(t, req.Header.Get("Content-Type"), "multipart/form-data; boundary=")
	assert.Contains(t, string(req.Body), `name="title"`)
	assert.Contains(t, string(req.Body), "Loft")
	assert.NotContains(t, string(req.Body), `name="location"`)
}
