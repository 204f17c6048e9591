package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateCategoryRequest struct {
	Name        string  `json:"name" validate:"not_empty,max=50"`
	Color       *string `json:"color,omitempty" validate:"omitempty,len=7,hexcolor"`
	Icon        *string `json:"icon,omitempty" validate:"omitempty,max=50"`
	Description *string `json:"description,omitempty"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,not_empty,max=50"`
	Color       *string `json:"color,omitempty" validate:"omitempty,len=7,hexcolor"`
	Icon        *string `json:"icon,omitempty" validate:"omitempty,max=50"`
	Description *string `json:"description,omitempty"`
}

type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Color       *string   `json:"color,omitempty"`
	Icon        *string   `json:"icon,omitempty"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateTagRequest struct {
	Name  string  `json:"name" validate:"not_empty,max=50"`
	Color *string `json:"color,omitempty" validate:"omitempty,len=7,hexcolor"`
}

type UpdateTagRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,not_empty,max=50"`
	Color *string `json:"color,omitempty" validate:"omitempty,len=7,hexcolor"`
}

type TagResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color *string   `json:"color,omitempty"`
}
