package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/welldanyogia/estate-intake-backend/internal/api/response"
)

// checkTimeout bounds each readiness check
const checkTimeout = 3 * time.Second

// CheckFunc reports whether a dependency is usable
type CheckFunc func(ctx context.Context) error

// HealthHandler handles health check HTTP requests
type HealthHandler struct {
	checks map[string]CheckFunc
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(checks map[string]CheckFunc) *HealthHandler {
	if checks == nil {
		checks = map[string]CheckFunc{}
	}
	return &HealthHandler{checks: checks}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

// Root handles GET /
func (h *HealthHandler) Root(c echo.Context) error {
	return response.Success(c, response.MsgRoot)
}

// Health handles GET /health
func (h *HealthHandler) Health(c echo.Context) error {
	services := make(map[string]string, len(h.checks))
	status := "healthy"

	for name, check := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request().Context(), checkTimeout)
		err := check(ctx)
		cancel()
		if err != nil {
			services[name] = "unhealthy"
			status = "unhealthy"
			continue
		}
		services[name] = "healthy"
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	return c.JSON(statusCode, HealthResponse{
		Status:   status,
		Services: services,
	})
}
