package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/panjilaras/Dashboard-PI/internal/middleware"
	"github.com/panjilaras/Dashboard-PI/internal/model"
	"github.com/panjilaras/Dashboard-PI/internal/model/auth"
	"github.com/panjilaras/Dashboard-PI/internal/server"
	"github.com/panjilaras/Dashboard-PI/internal/service"
)

type AuthHandler struct {
	Handler
	authService *service.AuthService
}

func NewAuthHandler(s *server.Server, authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		Handler:     NewHandler(s),
		authService: authService,
	}
}

func (h *AuthHandler) SignUp(c echo.Context, p *auth.SignUpPayload) (*auth.CurrentUser, error) {
	return h.authService.SignUp(c.Request().Context(), p)
}

func (h *AuthHandler) SignIn(c echo.Context, p *auth.SignInPayload) (*auth.SignInResponse, error) {
	return h.authService.SignIn(c.Request().Context(), p, service.SessionMeta{
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	})
}

func (h *AuthHandler) SignOut(c echo.Context, _ *model.EmptyPayload) error {
	return h.authService.SignOut(c.Request().Context(), middleware.GetIdentity(c))
}

func (h *AuthHandler) CurrentUser(c echo.Context, _ *model.EmptyPayload) (*auth.CurrentUser, error) {
	return h.authService.CurrentUser(c.Request().Context(), middleware.GetIdentity(c))
}

func (h *AuthHandler) SyncRole(c echo.Context, p *auth.SyncRolePayload) (*auth.SyncRoleResponse, error) {
	return h.authService.SyncRole(c.Request().Context(), p)
}

func (h *AuthHandler) ForgotPassword(c echo.Context, p *auth.ForgotPasswordPayload) (*model.MessageResponse, error) {
	return h.authService.ForgotPassword(c.Request().Context(), p)
}

func (h *AuthHandler) ResetPassword(c echo.Context, p *auth.ResetPasswordPayload) (*model.MessageResponse, error) {
	return h.authService.ResetPassword(c.Request().Context(), p)
}
