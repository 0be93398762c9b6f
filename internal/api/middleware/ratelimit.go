package middleware

import (
	"net/http"

	"user-profile-service/internal/models"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// RateLimit returns a per-client-IP token bucket limiter. Windows are kept
// in memory; this service runs as a single instance per shard so no shared
// store is needed.
func RateLimit(requestsPerSecond float64, burst int) echo.MiddlewareFunc {
	config := echomw.RateLimiterConfig{
		Store: echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
			Rate:  rate.Limit(requestsPerSecond),
			Burst: burst,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, models.NewErrorResponse("forbidden", "Could not identify client"))
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, models.NewErrorResponse("rate_limited", "Too many requests, slow down"))
		},
	}
	return echomw.RateLimiterWithConfig(config)
}
