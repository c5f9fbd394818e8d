package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/panjilaras/Dashboard-PI/internal/model/user"
	"github.com/panjilaras/Dashboard-PI/internal/server"
	"github.com/panjilaras/Dashboard-PI/internal/service"
)

type UserHandler struct {
	Handler
	userService *service.UserService
}

func NewUserHandler(s *server.Server, userService *service.UserService) *UserHandler {
	return &UserHandler{
		Handler:     NewHandler(s),
		userService: userService,
	}
}

func (h *UserHandler) List(c echo.Context, q *user.ListUsersQuery) ([]user.User, error) {
	users, err := h.userService.List(c.Request().Context(), q)
	return nonNil(users), err
}

func (h *UserHandler) Get(c echo.Context, p *user.GetUserPayload) (*user.User, error) {
	return h.userService.Get(c.Request().Context(), p)
}

func (h *UserHandler) Create(c echo.Context, p *user.CreateUserPayload) (*user.User, error) {
	return h.userService.Create(c.Request().Context(), p)
}

func (h *UserHandler) Update(c echo.Context, p *user.UpdateUserPayload) (*user.User, error) {
	return h.userService.Update(c.Request().Context(), p)
}

func (h *UserHandler) Delete(c echo.Context, p *user.DeleteUserPayload) error {
	return h.userService.Delete(c.Request().Context(), p)
}

func (h *UserHandler) Sync(c echo.Context, p *user.SyncUserPayload) (*user.User, error) {
	return h.userService.Sync(c.Request().Context(), p)
}

func (h *UserHandler) SetDefaultPassword(c echo.Context, p *user.SetDefaultPasswordPayload) (*user.SetDefaultPasswordResponse, error) {
	return h.userService.SetDefaultPassword(c.Request().Context(), p)
}
