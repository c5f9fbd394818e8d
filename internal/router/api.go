package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/panjilaras/Dashboard-PI/internal/handler"
	"github.com/panjilaras/Dashboard-PI/internal/lib/report"
	"github.com/panjilaras/Dashboard-PI/internal/middleware"
	"github.com/panjilaras/Dashboard-PI/internal/model"
	"github.com/panjilaras/Dashboard-PI/internal/model/auth"
	"github.com/panjilaras/Dashboard-PI/internal/model/category"
	"github.com/panjilaras/Dashboard-PI/internal/model/dashboard"
	"github.com/panjilaras/Dashboard-PI/internal/model/task"
	"github.com/panjilaras/Dashboard-PI/internal/model/user"
)

var (
	adminOnly = []user.Role{user.RoleAdmin}
	editors   = []user.Role{user.RoleAdmin, user.RoleManager}
)

func registerAuthRoutes(api *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	a := h.Auth
	g := api.Group("/auth")

	credentials := g.Group("", m.RateLimit.Limit("auth", middleware.AuthRateLimit, middleware.AuthBurst))
	credentials.POST("/sign-up", handler.Handle(a.Handler, a.SignUp, http.StatusCreated, &auth.SignUpPayload{}))
	credentials.POST("/sign-in", handler.Handle(a.Handler, a.SignIn, http.StatusOK, &auth.SignInPayload{}))
	credentials.POST("/forgot-password", handler.Handle(a.Handler, a.ForgotPassword, http.StatusOK, &auth.ForgotPasswordPayload{}))
	credentials.POST("/reset-password", handler.Handle(a.Handler, a.ResetPassword, http.StatusOK, &auth.ResetPasswordPayload{}))

	authed := g.Group("", m.Auth.RequireAuth)
	authed.POST("/sign-out", handler.HandleNoContent(a.Handler, a.SignOut, http.StatusNoContent, &model.EmptyPayload{}))
	authed.GET("/current-user", handler.Handle(a.Handler, a.CurrentUser, http.StatusOK, &model.EmptyPayload{}))
	authed.PUT("/sync-role", handler.Handle(a.Handler, a.SyncRole, http.StatusOK, &auth.SyncRolePayload{}), m.Auth.RequireRole(adminOnly...))
}

func registerUserRoutes(api *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	u := h.User
	g := api.Group("/users", m.Auth.RequireAuth)
	admin := m.Auth.RequireRole(adminOnly...)

	g.GET("", handler.Handle(u.Handler, u.List, http.StatusOK, &user.ListUsersQuery{}))
	g.GET("/:id", handler.Handle(u.Handler, u.Get, http.StatusOK, &user.GetUserPayload{}))
	g.POST("", handler.Handle(u.Handler, u.Create, http.StatusCreated, &user.CreateUserPayload{}), admin)
	g.PUT("/:id", handler.Handle(u.Handler, u.Update, http.StatusOK, &user.UpdateUserPayload{}), admin)
	g.DELETE("/:id", handler.HandleNoContent(u.Handler, u.Delete, http.StatusNoContent, &user.DeleteUserPayload{}), admin)
	g.POST("/sync", handler.Handle(u.Handler, u.Sync, http.StatusOK, &user.SyncUserPayload{}), admin)
	g.POST("/set-default-password", handler.Handle(u.Handler, u.SetDefaultPassword, http.StatusOK, &user.SetDefaultPasswordPayload{}), admin)
}

func registerTaskRoutes(api *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	t := h.Task
	g := api.Group("/tasks", m.Auth.RequireAuth)
	edit := m.Auth.RequireRole(editors...)

	g.GET("", handler.Handle(t.Handler, t.List, http.StatusOK, &task.ListTasksQuery{}))
	g.GET("/:id", handler.Handle(t.Handler, t.Get, http.StatusOK, &task.GetTaskPayload{}))
	g.POST("", handler.Handle(t.Handler, t.Create, http.StatusCreated, &task.CreateTaskPayload{}), edit)
	g.PUT("/:id", handler.Handle(t.Handler, t.Update, http.StatusOK, &task.UpdateTaskPayload{}), edit)
	g.PATCH("/:id/status", handler.Handle(t.Handler, t.UpdateStatus, http.StatusOK, &task.UpdateTaskStatusPayload{}), edit)
	g.DELETE("/:id", handler.HandleNoContent(t.Handler, t.Delete, http.StatusNoContent, &task.DeleteTaskPayload{}), edit)
}

func registerCategoryRoutes(api *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	c := h.Category
	g := api.Group("/task-categories", m.Auth.RequireAuth)
	edit := m.Auth.RequireRole(editors...)

	g.GET("", handler.Handle(c.Handler, c.List, http.StatusOK, &category.ListCategoriesQuery{}))
	g.GET("/:id", handler.Handle(c.Handler, c.Get, http.StatusOK, &category.GetCategoryPayload{}))
	g.POST("", handler.Handle(c.Handler, c.Create, http.StatusCreated, &category.CreateCategoryPayload{}), edit)
	g.PUT("/:id", handler.Handle(c.Handler, c.Update, http.StatusOK, &category.UpdateCategoryPayload{}), edit)
	g.DELETE("/:id", handler.HandleNoContent(c.Handler, c.Delete, http.StatusNoContent, &category.DeleteCategoryPayload{}), edit)
}

func registerDashboardRoutes(api *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	d := h.Dashboard
	dash := api.Group("/dashboard", m.Auth.RequireAuth)
	dash.GET("/metrics", handler.Handle(d.Handler, d.Metrics, http.StatusOK, &model.EmptyPayload{}))
	dash.GET("/charts", handler.Handle(d.Handler, d.Charts, http.StatusOK, &model.EmptyPayload{}))
	dash.GET("/activity", handler.Handle(d.Handler, d.Activity, http.StatusOK, &model.EmptyPayload{}))

	r := h.Report
	reports := api.Group("/reports", m.Auth.RequireAuth)
	reports.GET("/analytics", handler.Handle(r.Handler, r.Analytics, http.StatusOK, &dashboard.RangeQuery{}))
	for _, format := range []report.Format{report.FormatCSV, report.FormatXLSX, report.FormatPDF} {
		reports.GET("/export."+string(format), handler.HandleFile(r.Handler, r.Export(format), http.StatusOK, &dashboard.RangeQuery{}))
	}
}
