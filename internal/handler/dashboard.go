package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/panjilaras/Dashboard-PI/internal/lib/report"
	"github.com/panjilaras/Dashboard-PI/internal/model"
	"github.com/panjilaras/Dashboard-PI/internal/model/dashboard"
	"github.com/panjilaras/Dashboard-PI/internal/server"
	"github.com/panjilaras/Dashboard-PI/internal/service"
)

type DashboardHandler struct {
	Handler
	dashboardService *service.DashboardService
}

func NewDashboardHandler(s *server.Server, dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		Handler:          NewHandler(s),
		dashboardService: dashboardService,
	}
}

func (h *DashboardHandler) Metrics(c echo.Context, _ *model.EmptyPayload) (*dashboard.Metrics, error) {
	return h.dashboardService.Metrics(c.Request().Context())
}

func (h *DashboardHandler) Charts(c echo.Context, _ *model.EmptyPayload) (*dashboard.Charts, error) {
	return h.dashboardService.Charts(c.Request().Context())
}

func (h *DashboardHandler) Activity(c echo.Context, _ *model.EmptyPayload) ([]dashboard.Activity, error) {
	activity, err := h.dashboardService.Activity(c.Request().Context())
	return nonNil(activity), err
}

// ReportHandler serves the reports page: analytics and document exports.
type ReportHandler struct {
	Handler
	dashboardService *service.DashboardService
}

func NewReportHandler(s *server.Server, dashboardService *service.DashboardService) *ReportHandler {
	return &ReportHandler{
		Handler:          NewHandler(s),
		dashboardService: dashboardService,
	}
}

func (h *ReportHandler) Analytics(c echo.Context, q *dashboard.RangeQuery) (*dashboard.Analytics, error) {
	return h.dashboardService.Analytics(c.Request().Context(), q)
}

// Export returns the endpoint rendering the report in format.
func (h *ReportHandler) Export(format report.Format) HandlerFunc[*dashboard.RangeQuery, *service.ExportedFile] {
	return func(c echo.Context, q *dashboard.RangeQuery) (*service.ExportedFile, error) {
		return h.dashboardService.Export(c.Request().Context(), format, q)
	}
}
