package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// defaultDevOrigin is the frontend dev server
const defaultDevOrigin = "http://localhost:3000"

// SecureCORS returns CORS middleware with secure configuration.
// Does NOT allow wildcard (*) origin in production.
func SecureCORS(origins []string, appEnv string) echo.MiddlewareFunc {
	if len(origins) == 0 {
		// Default to localhost only in development
		origins = []string{defaultDevOrigin}
	}

	// Filter out wildcard in production
	if appEnv == "production" {
		filteredOrigins := make([]string, 0, len(origins))
		for _, origin := range origins {
			if origin != "*" {
				filteredOrigins = append(filteredOrigins, origin)
			}
		}
		origins = filteredOrigins
		if len(origins) == 0 {
			origins = []string{defaultDevOrigin}
		}
	}

	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
		}
	}

	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     origins,
		AllowMethods:     []string{echo.GET, echo.POST, echo.OPTIONS},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		AllowCredentials: allowCredentials,
		MaxAge:           300,
	})
}
