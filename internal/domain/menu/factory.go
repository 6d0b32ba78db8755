package menu

import (
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(req CreateMenuItemRequest) MenuItem {
	now := time.Now().UTC()

	return MenuItem{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
