package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/panjilaras/Dashboard-PI/internal/model/category"
	"github.com/panjilaras/Dashboard-PI/internal/server"
	"github.com/panjilaras/Dashboard-PI/internal/service"
)

type CategoryHandler struct {
	Handler
	categoryService *service.CategoryService
}

func NewCategoryHandler(s *server.Server, categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		Handler:         NewHandler(s),
		categoryService: categoryService,
	}
}

func (h *CategoryHandler) List(c echo.Context, q *category.ListCategoriesQuery) ([]category.WithStats, error) {
	categories, err := h.categoryService.List(c.Request().Context(), q)
	return nonNil(categories), err
}

func (h *CategoryHandler) Get(c echo.Context, p *category.GetCategoryPayload) (*category.WithStats, error) {
	return h.categoryService.Get(c.Request().Context(), p)
}

func (h *CategoryHandler) Create(c echo.Context, p *category.CreateCategoryPayload) (*category.Category, error) {
	return h.categoryService.Create(c.Request().Context(), p)
}

func (h *CategoryHandler) Update(c echo.Context, p *category.UpdateCategoryPayload) (*category.Category, error) {
	return h.categoryService.Update(c.Request().Context(), p)
}

func (h *CategoryHandler) Delete(c echo.Context, p *category.DeleteCategoryPayload) error {
	return h.categoryService.Delete(c.Request().Context(), p)
}
