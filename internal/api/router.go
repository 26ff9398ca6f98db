package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/welldanyogia/estate-intake-backend/internal/api/handlers"
	"github.com/welldanyogia/estate-intake-backend/internal/api/middleware"
	"github.com/welldanyogia/estate-intake-backend/internal/api/response"
	"github.com/welldanyogia/estate-intake-backend/internal/logger"
	"github.com/welldanyogia/estate-intake-backend/internal/services"
)

// RouterConfig holds dependencies for the router
type RouterConfig struct {
	Service services.IntakeService
	Logger  *slog.Logger
	// Security configuration
	AllowedOrigins []string // Allowed CORS origins
	AppEnv         string
	RateLimit      float64 // Requests per second per client IP
	RateBurst      int     // Burst size for rate limiter
	UploadMaxBytes int64
	// Readiness checks reported by GET /health
	HealthChecks map[string]handlers.CheckFunc
}

// NewRouter creates and configures the Echo router with all routes
func NewRouter(cfg *RouterConfig) *echo.Echo {
	l := cfg.Logger
	if l == nil {
		l = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(l)

	// Middleware (applied in order)
	// 1. Recover from panics
	e.Use(middleware.Recover())

	// 2. Security headers (applied to all responses)
	e.Use(middleware.SecureHeaders())

	// 3. CORS
	e.Use(middleware.SecureCORS(cfg.AllowedOrigins, cfg.AppEnv))

	// 4. Rate limiting
	if cfg.RateLimit > 0 {
		e.Use(middleware.RateLimiter(cfg.RateLimit, cfg.RateBurst, logger.FromLogger(l)))
	}

	// 5. Request logging
	e.Use(middleware.RequestLogger(l))

	// 6. Body size cap
	if cfg.UploadMaxBytes > 0 {
		e.Use(middleware.BodyLimit(cfg.UploadMaxBytes))
	}

	healthHandler := handlers.NewHealthHandler(cfg.HealthChecks)
	listingHandler := handlers.NewListingHandler(cfg.Service, l)
	submissionHandler := handlers.NewSubmissionHandler(cfg.Service, l)

	e.GET("/", healthHandler.Root)
	e.GET("/health", healthHandler.Health)

	// Listing routes
	e.GET("/fetch", listingHandler.Fetch)
	e.GET("/fetch_naiken", listingHandler.FetchViewable)

	// Submission routes
	e.POST("/send_kaitsuke", submissionHandler.SendOffer)
	e.POST("/send_naiken", submissionHandler.SendViewing)
	e.POST("/send_ca", submissionHandler.SendNDA)

	return e
}

// errorHandler renders framework errors (404, 405, 413, panics) in the
// same envelope as handler errors
func errorHandler(l *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := response.MsgInternalError

		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			switch status {
			case http.StatusRequestEntityTooLarge:
				message = response.MsgUploadRejected
			case http.StatusTooManyRequests:
				message = response.MsgTooManyRequests
			default:
				if status < http.StatusInternalServerError {
					message = http.StatusText(status)
				}
			}
		}
		if status >= http.StatusInternalServerError {
			l.Error("unhandled error", slog.Any("error", err), slog.String("path", c.Path()))
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, response.APIResponse{
				Status:  response.StatusError,
				Message: message,
			})
		}
		if writeErr != nil {
			l.Error("failed to write error response", slog.Any("error", writeErr))
		}
	}
}
