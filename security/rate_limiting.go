// Package security holds middleware for the local HTTP surface.
package security

import (
	"net/http"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
)

// SubmitRateLimit throttles payment-backed submissions. A runaway view
// layer retrying a failed bid in a loop would otherwise hammer the order
// endpoint upstream.
func SubmitRateLimit() echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStore(2),
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{
				"error": "Too many attempts. Please try again shortly.",
			})
		},
	})
}
