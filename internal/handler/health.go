package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/panjilaras/Dashboard-PI/internal/config"
	"github.com/panjilaras/Dashboard-PI/internal/middleware"
	"github.com/panjilaras/Dashboard-PI/internal/server"
)

// Overall health states. Redis only backs the cache and the job queue, so
// losing it degrades the service without failing the check.
const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

type checkResult struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

type healthResponse struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Environment string                 `json:"environment"`
	Checks      map[string]checkResult `json:"checks"`
}

// CheckHealth probes the configured dependencies. It answers 503 when the
// database is unreachable.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	logger := middleware.GetLogger(c).With().Str("operation", "health_check").Logger()
	obs := h.server.Config.Observability

	response := healthResponse{
		Status:      statusHealthy,
		Timestamp:   time.Now().UTC(),
		Environment: h.server.Config.Primary.Env,
		Checks:      make(map[string]checkResult),
	}

	if obs.HealthCheckEnabled(config.HealthCheckDatabase) && h.server.DB != nil {
		result := h.probe(c.Request().Context(), config.HealthCheckDatabase, h.server.DB.Pool.Ping)
		response.Checks[config.HealthCheckDatabase] = result
		if result.Status != statusHealthy {
			response.Status = statusUnhealthy
		}
	}

	if obs.HealthCheckEnabled(config.HealthCheckRedis) && h.server.Redis != nil {
		result := h.probe(c.Request().Context(), config.HealthCheckRedis, func(ctx context.Context) error {
			return h.server.Redis.Ping(ctx).Err()
		})
		response.Checks[config.HealthCheckRedis] = result
		if result.Status != statusHealthy && response.Status == statusHealthy {
			response.Status = statusDegraded
		}
	}

	status := http.StatusOK
	if response.Status == statusUnhealthy {
		status = http.StatusServiceUnavailable
		h.recordFailure("overall", time.Since(start), "")
	}

	logger.Info().
		Str("status", response.Status).
		Dur("total_duration", time.Since(start)).
		Msg("health check finished")

	return c.JSON(status, response)
}

func (h *HealthHandler) probe(ctx context.Context, name string, ping func(context.Context) error) checkResult {
	ctx, cancel := context.WithTimeout(ctx, h.server.Config.Observability.HealthChecks.Timeout)
	defer cancel()

	start := time.Now()
	err := ping(ctx)
	elapsed := time.Since(start)

	if err != nil {
		h.server.Logger.Error().Err(err).Str("check", name).Dur("response_time", elapsed).Msg("health check failed")
		h.recordFailure(name, elapsed, err.Error())
		return checkResult{Status: statusUnhealthy, ResponseTime: elapsed.String(), Error: err.Error()}
	}
	return checkResult{Status: statusHealthy, ResponseTime: elapsed.String()}
}

func (h *HealthHandler) recordFailure(check string, elapsed time.Duration, message string) {
	app := h.server.LoggerService.GetApplication()
	if app == nil {
		return
	}
	app.RecordCustomEvent("HealthCheckError", map[string]any{
		"check_type":       check,
		"operation":        "health_check",
		"response_time_ms": elapsed.Milliseconds(),
		"error_message":    message,
	})
}
