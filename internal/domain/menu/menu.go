package menu

import (
	"errors"
	"time"
)

type MenuItem struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("menu item not found")

type CreateMenuItemRequest struct {
	Name        string   `json:"name" binding:"required,min=1,max=120"`
	Description string   `json:"description" binding:"omitempty,max=1000"`
	Price       *float64 `json:"price" binding:"required,gte=0"`
	Category    string   `json:"category" binding:"required,min=1,max=80"`
	ImageURL    string   `json:"imageUrl" binding:"omitempty,url,max=500"`
}

// Partial update: nil means "leave the stored value alone".
type UpdateMenuItemRequest struct {
	Name        *string  `json:"name" binding:"omitempty,min=1,max=120"`
	Description *string  `json:"description" binding:"omitempty,max=1000"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	Category    *string  `json:"category" binding:"omitempty,min=1,max=80"`
	ImageURL    *string  `json:"imageUrl" binding:"omitempty,url,max=500"`
}

// ApplyTo overlays the supplied fields on an existing item and bumps
// UpdatedAt. Omitted fields keep their prior values.
func (req UpdateMenuItemRequest) ApplyTo(item MenuItem) MenuItem {
	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Price != nil {
		item.Price = *req.Price
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.ImageURL != nil {
		item.ImageURL = *req.ImageURL
	}
	item.UpdatedAt = time.Now().UTC()
	return item
}
