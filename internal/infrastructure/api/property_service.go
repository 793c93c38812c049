package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"uyadmin.io/cli/internal/core/domain"
	httpdomain "uyadmin.io/cli/internal/core/domain/http"
)

// PropertyService manages property listings, which the backend calls
// schedules.
type PropertyService struct {
	gateway *Gateway
}

func NewPropertyService(gateway *Gateway) *PropertyService {
	return &PropertyService{gateway: gateway}
}

// Create uploads a new property as multipart/form-data.
func (s *PropertyService) Create(ctx context.Context, form domain.PropertyForm) (*domain.Property, error) {
	if err := s.gateway.Validate(form); err != nil {
		return nil, err
	}

	req, err := multipartRequest(http.MethodPost, "/uy/create_schedule/", form)
	if err != nil {
		return nil, err
	}

	var property domain.Property
	if err := s.gateway.send(ctx, req, &property); err != nil {
		return nil, err
	}
	return &property, nil
}

func (s *PropertyService) List(ctx context.Context) ([]domain.Property, error) {
	return getList[domain.Property](ctx, s.gateway, "/uy/get_all_schedule/")
}

func (s *PropertyService) Get(ctx context.Context, id int) (*domain.Property, error) {
	var property domain.Property
	if err := s.gateway.get(ctx, fmt.Sprintf("/uy/get_schedule/%d/", id), &property); err != nil {
		return nil, err
	}
	return &property, nil
}

// Update patches a property. Image uploads force multipart; otherwise only the
// changed fields are sent as JSON.
func (s *PropertyService) Update(ctx context.Context, id int, patch domain.PropertyPatch) (*domain.Property, error) {
	path := fmt.Sprintf("/uy/update_schedule/%d/", id)
	if err := s.gateway.Validate(patch); err != nil {
		return nil, err
	}

	var (
		req *httpdomain.Request
		err error
	)
	if patch.Form().HasImages() {
		req, err = multipartRequest(http.MethodPatch, path, patch.Form())
	} else {
		req, err = httpdomain.NewJSONRequest(http.MethodPatch, path, patch)
	}
	if err != nil {
		return nil, err
	}

	var property domain.Property
	if err := s.gateway.send(ctx, req, &property); err != nil {
		return nil, err
	}
	return &property, nil
}

func (s *PropertyService) Delete(ctx context.Context, id int) error {
	req := httpdomain.NewRequest(http.MethodDelete, fmt.Sprintf("/uy/delete_schedule/%d/", id))
	return s.gateway.send(ctx, req, nil)
}

// multipartRequest encodes the form into a replayable multipart body.
func multipartRequest(method, path string, form domain.PropertyForm) (*httpdomain.Request, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, kv := range form.Fields() {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, fmt.Errorf("failed to write form field %s: %w", kv[0], err)
		}
	}

	images := [][2]string{{"image1", form.Image1}, {"image2", form.Image2}}
	for _, img := range images {
		if img[1] == "" {
			continue
		}
		if err := attachFile(w, img[0], img[1]); err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return httpdomain.NewRawRequest(method, path, w.FormDataContentType(), buf.Bytes()), nil
}

func attachFile(w *multipart.Writer, field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", field, err)
	}
	defer f.Close()

	part, err := w.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("failed to create %s part: %w", field, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("failed to copy %s: %w", field, err)
	}
	return nil
}
