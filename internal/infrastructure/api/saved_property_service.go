package api

import (
	"context"
	"fmt"
	"net/http"

	"uyadmin.io/cli/internal/core/domain"
	httpdomain "uyadmin.io/cli/internal/core/domain/http"
)

// SavedPropertyService manages the current user's bookmarked properties. The
// backend names them saved schedules.
type SavedPropertyService struct {
	gateway *Gateway
}

func NewSavedPropertyService(gateway *Gateway) *SavedPropertyService {
	return &SavedPropertyService{gateway: gateway}
}

// Create bookmarks the property with the given id.
func (s *SavedPropertyService) Create(ctx context.Context, propertyID int) (*domain.SavedProperty, error) {
	var saved domain.SavedProperty
	payload := domain.SavedPropertyRequest{Schedule: propertyID}
	if err := s.gateway.sendJSON(ctx, http.MethodPost, "/uy/create_saved_schedule/", payload, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (s *SavedPropertyService) List(ctx context.Context) ([]domain.SavedProperty, error) {
	return getList[domain.SavedProperty](ctx, s.gateway, "/uy/get_saved_schedule/")
}

// Delete removes a bookmark by its own id, not the property id.
func (s *SavedPropertyService) Delete(ctx context.Context, id int) error {
	req := httpdomain.NewRequest(http.MethodDelete, fmt.Sprintf("/uy/delete_saved_schedule/%d/", id))
	return s.gateway.send(ctx, req, nil)
}
