package middleware

import (
	"net/http"

	"user-profile-service/internal/models"

	"github.com/labstack/echo/v4"
)

// AdminRequired rejects requests whose JWT role claim is not admin. It
// must run after JWTAuth, which puts the role into the context.
func AdminRequired() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("userRole").(string)
			if role != models.RoleAdmin {
				return c.JSON(http.StatusForbidden, models.NewErrorResponse("forbidden", "Admin access required"))
			}
			return next(c)
		}
	}
}
