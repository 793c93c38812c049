package api

import (
	"context"
	"fmt"
	"net/http"

	"uyadmin.io/cli/internal/core/domain"
)

// CategoryService manages property categories.
type CategoryService struct {
	gateway *Gateway
}

func NewCategoryService(gateway *Gateway) *CategoryService {
	return &CategoryService{gateway: gateway}
}

// Create calls POST /uy/create_category/.
func (s *CategoryService) Create(ctx context.Context, form domain.CategoryForm) (*domain.Category, error) {
	var category domain.Category
	if err := s.gateway.sendJSON(ctx, http.MethodPost, "/uy/create_category/", form, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// List calls GET /uy/get_all_category/.
func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	return getList[domain.Category](ctx, s.gateway, "/uy/get_all_category/")
}

// Get calls GET /uy/get_category_by_id/{id}/.
func (s *CategoryService) Get(ctx context.Context, id int) (*domain.Category, error) {
	var category domain.Category
	if err := s.gateway.get(ctx, fmt.Sprintf("/uy/get_category_by_id/%d/", id), &category); err != nil {
		return nil, err
	}
	return &category, nil
}
