package stubapi

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/labstack/echo/v4"

	"uyadmin.io/cli/internal/core/domain"
)

// propertyInput binds both JSON and multipart bodies.
type propertyInput struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Price       string `json:"price" form:"price"`
	Location    string `json:"location" form:"location"`
	Category    string `json:"category" form:"category"`
	Status      string `json:"status" form:"status"`
}

func ownerOf(acc *account) *domain.User {
	return &domain.User{Username: acc.username, Email: acc.email, Role: "admin"}
}

func pathID(c echo.Context) (int, error) {
	return strconv.Atoi(c.Param("id"))
}

func (s *Server) handleCreateCategory(c echo.Context) error {
	var form domain.CategoryForm
	if err := c.Bind(&form); err != nil || form.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string][]string{"name": {"This field is required."}})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	category := domain.Category{
		ID:          s.allocID(),
		Name:        form.Name,
		Description: form.Description,
		User:        ownerOf(currentAccount(c)),
	}
	s.categories = append(s.categories, category)
	return c.JSON(http.StatusCreated, category)
}

func (s *Server) handleListCategories(c echo.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Category, len(s.categories))
	copy(out, s.categories)
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetCategory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return detail(c, http.StatusNotFound, "Not found.")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, category := range s.categories {
		if category.ID == id {
			return c.JSON(http.StatusOK, category)
		}
	}
	return detail(c, http.StatusNotFound, "Not found.")
}

func (s *Server) handleCreateProperty(c echo.Context) error {
	var in propertyInput
	if err := c.Bind(&in); err != nil {
		return detail(c, http.StatusBadRequest, "malformed body")
	}
	if in.Title == "" || in.Price == "" || in.Category == "" {
		return detail(c, http.StatusBadRequest, "title, price and category are required")
	}
	categoryID, err := strconv.Atoi(in.Category)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string][]string{"category": {"Invalid pk."}})
	}
	status := domain.PropertyStatus(in.Status)
	if status == "" {
		status = domain.StatusActive
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasCategoryLocked(categoryID) {
		return c.JSON(http.StatusBadRequest, map[string][]string{"category": {"Invalid pk - object does not exist."}})
	}

	property := domain.Property{
		ID:          s.allocID(),
		User:        ownerOf(currentAccount(c)),
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Location:    in.Location,
		CreatedAt:   s.cfg.Clock().UTC(),
		Status:      status,
		Category:    categoryID,
		Image1:      uploadedImage(c, "image1"),
		Image2:      uploadedImage(c, "image2"),
	}
	s.properties = append(s.properties, property)
	return c.JSON(http.StatusCreated, property)
}

func (s *Server) handleListProperties(c echo.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Property, len(s.properties))
	copy(out, s.properties)
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetProperty(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return detail(c, http.StatusNotFound, "Not found.")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.propertyIndexLocked(id); i >= 0 {
		return c.JSON(http.StatusOK, s.properties[i])
	}
	return detail(c, http.StatusNotFound, "Not found.")
}

func (s *Server) handleUpdateProperty(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return detail(c, http.StatusNotFound, "Not found.")
	}
	var in propertyInput
	if err := c.Bind(&in); err != nil {
		return detail(c, http.StatusBadRequest, "malformed body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.propertyIndexLocked(id)
	if i < 0 {
		return detail(c, http.StatusNotFound, "Not found.")
	}

	p := &s.properties[i]
	if in.Title != "" {
		p.Title = in.Title
	}
	if in.Description != "" {
		p.Description = in.Description
	}
	if in.Price != "" {
		p.Price = in.Price
	}
	if in.Location != "" {
		p.Location = in.Location
	}
	if in.Status != "" {
		p.Status = domain.PropertyStatus(in.Status)
	}
	if in.Category != "" {
		categoryID, err := strconv.Atoi(in.Category)
		if err != nil || !s.hasCategoryLocked(categoryID) {
			return c.JSON(http.StatusBadRequest, map[string][]string{"category": {"Invalid pk."}})
		}
		p.Category = categoryID
	}
	if img := uploadedImage(c, "image1"); img != nil {
		p.Image1 = img
	}
	if img := uploadedImage(c, "image2"); img != nil {
		p.Image2 = img
	}
	return c.JSON(http.StatusOK, *p)
}

func (s *Server) handleDeleteProperty(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return detail(c, http.StatusNotFound, "Not found.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.propertyIndexLocked(id)
	if i < 0 {
		return detail(c, http.StatusNotFound, "Not found.")
	}
	s.properties = append(s.properties[:i], s.properties[i+1:]...)

	kept := s.saved[:0]
	for _, rec := range s.saved {
		if rec.propertyID != id {
			kept = append(kept, rec)
		}
	}
	s.saved = kept
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleCreateSaved(c echo.Context) error {
	var req domain.SavedPropertyRequest
	if err := c.Bind(&req); err != nil || req.Schedule <= 0 {
		return c.JSON(http.StatusBadRequest, map[string][]string{"schedule": {"This field is required."}})
	}
	acc := currentAccount(c)

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.propertyIndexLocked(req.Schedule)
	if i < 0 {
		return c.JSON(http.StatusBadRequest, map[string][]string{"schedule": {"Invalid pk - object does not exist."}})
	}
	rec := savedRecord{id: s.allocID(), owner: acc.id, propertyID: req.Schedule, savedAt: s.cfg.Clock().UTC()}
	s.saved = append(s.saved, rec)
	return c.JSON(http.StatusCreated, s.savedViewLocked(rec, acc))
}

func (s *Server) handleListSaved(c echo.Context) error {
	acc := currentAccount(c)

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.SavedProperty{}
	for _, rec := range s.saved {
		if rec.owner == acc.id {
			out = append(out, s.savedViewLocked(rec, acc))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleDeleteSaved(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return detail(c, http.StatusNotFound, "Not found.")
	}
	acc := currentAccount(c)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rec := range s.saved {
		if rec.id == id && rec.owner == acc.id {
			s.saved = append(s.saved[:i], s.saved[i+1:]...)
			return c.NoContent(http.StatusNoContent)
		}
	}
	return detail(c, http.StatusNotFound, "Not found.")
}

func (s *Server) savedViewLocked(rec savedRecord, acc *account) domain.SavedProperty {
	view := domain.SavedProperty{ID: rec.id, User: ownerOf(acc), SavedAt: rec.savedAt}
	if i := s.propertyIndexLocked(rec.propertyID); i >= 0 {
		view.Schedule = s.properties[i]
	}
	return view
}

func (s *Server) hasCategoryLocked(id int) bool {
	for _, category := range s.categories {
		if category.ID == id {
			return true
		}
	}
	return false
}

func (s *Server) propertyIndexLocked(id int) int {
	for i, p := range s.properties {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// uploadedImage records the upload's media URL. Contents are discarded.
func uploadedImage(c echo.Context, field string) *string {
	fh, err := c.FormFile(field)
	if err != nil || fh == nil {
		return nil
	}
	url := mediaURL(fh)
	return &url
}

func mediaURL(fh *multipart.FileHeader) string {
	return fmt.Sprintf("/media/schedules/%d_%s", fh.Size, filepath.Base(fh.Filename))
}
