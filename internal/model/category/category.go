package category

import (
	"strings"

	"github.com/panjilaras/Dashboard-PI/internal/model"
	"github.com/panjilaras/Dashboard-PI/internal/validation"
)

// DefaultColor is lavender, used when a category is created without a color.
const DefaultColor = "#E6E6FA"

type Category struct {
	model.Base
	Name  string `json:"name" db:"name"`
	Color string `json:"color" db:"color"`
}

// WithStats adds the per-category aggregates computed at query time.
type WithStats struct {
	Category
	TaskCount int     `json:"taskCount" db:"task_count"`
	AvgPoints float64 `json:"avgPoints" db:"avg_points"`
}

// ------------------------------------------------------------

type ListCategoriesQuery struct {
	model.ListWindow
	Search string `query:"search" validate:"omitempty,max=255"`
}

func (q *ListCategoriesQuery) Validate() error {
	return validation.Struct(q)
}

// ------------------------------------------------------------

type GetCategoryPayload struct {
	model.IDParam
}

func (p *GetCategoryPayload) Validate() error {
	return validation.Struct(p)
}

// ------------------------------------------------------------

type CreateCategoryPayload struct {
	Name  string  `json:"name" validate:"required,min=1,max=100"`
	Color *string `json:"color" validate:"omitempty,hexrgb"`
}

func (p *CreateCategoryPayload) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	return validation.Struct(p)
}

// ------------------------------------------------------------

type UpdateCategoryPayload struct {
	model.IDParam
	Name  *string `json:"name" validate:"omitempty,min=1,max=100"`
	Color *string `json:"color" validate:"omitempty,hexrgb"`
}

func (p *UpdateCategoryPayload) Validate() error {
	if p.Name != nil {
		trimmed := strings.TrimSpace(*p.Name)
		p.Name = &trimmed
		if trimmed == "" {
			return validation.CustomValidationErrors{{Field: "name", Message: "cannot be blank"}}
		}
	}
	return validation.Struct(p)
}

// ------------------------------------------------------------

type DeleteCategoryPayload struct {
	model.IDParam
}

func (p *DeleteCategoryPayload) Validate() error {
	return validation.Struct(p)
}
