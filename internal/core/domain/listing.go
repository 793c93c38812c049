package domain

import "time"

// PropertyStatus is the publication state of a property.
type PropertyStatus string

const (
	StatusActive   PropertyStatus = "active"
	StatusInactive PropertyStatus = "inactive"
)

// User is the owner embedded in backend records.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
}

// Property is a listing. The backend calls it a "schedule".
type Property struct {
	ID          int            `json:"id"`
	User        *User          `json:"user_id,omitempty"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Price       string         `json:"price"`
	Location    string         `json:"location"`
	Image1      *string        `json:"image1"`
	Image2      *string        `json:"image2"`
	CreatedAt   time.Time      `json:"created_at"`
	Status      PropertyStatus `json:"status"`
	Category    int            `json:"category"`
}

// IsActive reports whether the property is published.
func (p Property) IsActive() bool {
	return p.Status == StatusActive
}

// Category groups properties.
type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	User        *User  `json:"user_id,omitempty"`
}

// SavedProperty is a bookmark of a property by a user.
type SavedProperty struct {
	ID       int       `json:"id"`
	User     *User     `json:"user_id,omitempty"`
	Schedule Property  `json:"schedule"`
	SavedAt  time.Time `json:"saved_at"`
}

// PropertyForm is the payload for creating or updating a property.
// Image1 and Image2 are local file paths uploaded as multipart parts.
type PropertyForm struct {
	Title       string         `json:"title,omitempty" validate:"required,max=255"`
	Description string         `json:"description,omitempty" validate:"required"`
	Price       string         `json:"price,omitempty" validate:"required,numeric"`
	Location    string         `json:"location,omitempty" validate:"required,max=255"`
	Category    string         `json:"category,omitempty" validate:"required,numeric"`
	Status      PropertyStatus `json:"status,omitempty" validate:"required,oneof=active inactive"`
	Image1      string         `json:"-" validate:"omitempty,file"`
	Image2      string         `json:"-" validate:"omitempty,file"`
}

// HasImages reports whether the form carries file uploads.
func (f PropertyForm) HasImages() bool {
	return f.Image1 != "" || f.Image2 != ""
}

// Fields returns the non-empty text fields in a stable order.
func (f PropertyForm) Fields() [][2]string {
	all := [][2]string{
		{"title", f.Title},
		{"description", f.Description},
		{"price", f.Price},
		{"location", f.Location},
		{"category", f.Category},
		{"status", string(f.Status)},
	}
	out := make([][2]string, 0, len(all))
	for _, kv := range all {
		if kv[1] != "" {
			out = append(out, kv)
		}
	}
	return out
}

// PropertyPatch is a partial update; only non-empty fields are sent.
type PropertyPatch struct {
	Title       string         `json:"title,omitempty" validate:"omitempty,max=255"`
	Description string         `json:"description,omitempty"`
	Price       string         `json:"price,omitempty" validate:"omitempty,numeric"`
	Location    string         `json:"location,omitempty" validate:"omitempty,max=255"`
	Category    string         `json:"category,omitempty" validate:"omitempty,numeric"`
	Status      PropertyStatus `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
	Image1      string         `json:"-" validate:"omitempty,file"`
	Image2      string         `json:"-" validate:"omitempty,file"`
}

// Form converts the patch to the multipart field representation.
func (p PropertyPatch) Form() PropertyForm {
	return PropertyForm(p)
}

// CategoryForm is the payload for creating a category.
type CategoryForm struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
}

// SavedPropertyRequest is the payload for bookmarking a property.
type SavedPropertyRequest struct {
	Schedule int `json:"schedule" validate:"required,gt=0"`
}

// DashboardStats summarises the catalogue for the dashboard screen.
type DashboardStats struct {
	Properties       int
	SavedProperties  int
	Categories       int
	ActiveProperties int
}
