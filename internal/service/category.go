package service

import (
	"context"

	"github.com/panjilaras/Dashboard-PI/internal/errs"
	"github.com/panjilaras/Dashboard-PI/internal/model/category"
	"github.com/panjilaras/Dashboard-PI/internal/server"
)

type CategoryService struct {
	server     *server.Server
	categories CategoryStore
	cache      Cache
}

func NewCategoryService(s *server.Server, categories CategoryStore, cache Cache) *CategoryService {
	return &CategoryService{server: s, categories: categories, cache: cache}
}

func (s *CategoryService) List(ctx context.Context, q *category.ListCategoriesQuery) ([]category.WithStats, error) {
	return s.categories.List(ctx, q)
}

func (s *CategoryService) Get(ctx context.Context, p *category.GetCategoryPayload) (*category.WithStats, error) {
	return s.categories.GetByID(ctx, p.ID)
}

func (s *CategoryService) Create(ctx context.Context, p *category.CreateCategoryPayload) (*category.Category, error) {
	if err := s.ensureNameFree(ctx, p.Name, 0); err != nil {
		return nil, err
	}

	color := category.DefaultColor
	if p.Color != nil {
		color = *p.Color
	}

	c, err := s.categories.Create(ctx, p.Name, color)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, p *category.UpdateCategoryPayload) (*category.Category, error) {
	if p.Name != nil {
		if err := s.ensureNameFree(ctx, *p.Name, p.ID); err != nil {
			return nil, err
		}
	}

	c, err := s.categories.Update(ctx, p)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	return c, nil
}

// Delete removes the category; its tasks become uncategorized.
func (s *CategoryService) Delete(ctx context.Context, p *category.DeleteCategoryPayload) error {
	if err := s.categories.Delete(ctx, p.ID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}

// ensureNameFree rejects a name already used by another category, ignoring
// case. The unique index on LOWER(name) backs this up under races.
func (s *CategoryService) ensureNameFree(ctx context.Context, name string, selfID int64) error {
	existing, err := s.categories.FindByName(ctx, name)
	switch {
	case err == nil && existing.ID != selfID:
		return errs.NewBadRequestError("A category with this name already exists", true,
			errs.Code("TASK_CATEGORY_ALREADY_EXISTS"), []errs.FieldError{{Field: "name", Error: "already exists"}}, nil)
	case err != nil && !isNotFound(err):
		return err
	}
	return nil
}
