// Package router builds the Echo instance: global middleware, system
// routes and the /api route groups.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/panjilaras/Dashboard-PI/internal/handler"
	"github.com/panjilaras/Dashboard-PI/internal/middleware"
	"github.com/panjilaras/Dashboard-PI/internal/server"
)

func NewRouter(s *server.Server, h *handler.Handlers, authenticator middleware.Authenticator) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s, authenticator)

	router := echo.New()
	router.HideBanner = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	// Order matters: the request id and the New Relic transaction must exist
	// before the context logger is built, and the request logger needs it.
	router.Use(
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
	)

	registerSystemRoutes(router, h)

	api := router.Group("/api")
	registerAuthRoutes(api, h, middlewares)
	registerUserRoutes(api, h, middlewares)
	registerTaskRoutes(api, h, middlewares)
	registerCategoryRoutes(api, h, middlewares)
	registerDashboardRoutes(api, h, middlewares)

	return router
}
