// Package handler is the HTTP entry point of the business logic. Handlers
// bind and validate requests through the generic pipeline in base.go and
// delegate to the service layer.
package handler

import (
	"github.com/panjilaras/Dashboard-PI/internal/server"
	"github.com/panjilaras/Dashboard-PI/internal/service"
)

type Handlers struct {
	Health    *HealthHandler
	OpenAPI   *OpenAPIHandler
	Auth      *AuthHandler
	User      *UserHandler
	Task      *TaskHandler
	Category  *CategoryHandler
	Dashboard *DashboardHandler
	Report    *ReportHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(s),
		OpenAPI:   NewOpenAPIHandler(s),
		Auth:      NewAuthHandler(s, services.Auth),
		User:      NewUserHandler(s, services.User),
		Task:      NewTaskHandler(s, services.Task),
		Category:  NewCategoryHandler(s, services.Category),
		Dashboard: NewDashboardHandler(s, services.Dashboard),
		Report:    NewReportHandler(s, services.Dashboard),
	}
}

// nonNil makes empty lists encode as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
