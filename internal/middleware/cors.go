package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// CORSMiddleware returns a CORS middleware that allows requests from the
// configured origins, localhost and CloudFront domains.
func CORSMiddleware(allowed ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			origin := c.Request().Header.Get("Origin")

			// Check if origin is allowed
			if isAllowedOrigin(origin, allowed) {
				h := c.Response().Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type")
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Expose-Headers", "Content-Disposition, X-Collage-Seed")
				h.Add("Vary", "Origin")
			}

			// Handle preflight requests
			if c.Request().Method == http.MethodOptions {
				return c.NoContent(http.StatusNoContent)
			}

			return next(c)
		}
	}
}

// isAllowedOrigin checks if the origin is allowed for CORS.
func isAllowedOrigin(origin string, allowed []string) bool {
	if origin == "" {
		return false
	}

	for _, a := range allowed {
		if origin == a {
			return true
		}
	}

	// Allow localhost for development
	if strings.HasPrefix(origin, "http://localhost:") {
		return true
	}

	// Allow CloudFront domains
	if strings.HasSuffix(origin, ".cloudfront.net") {
		return true
	}

	return false
}
