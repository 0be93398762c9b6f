package middleware

import (
	"errors"
	"net/http"

	"user-profile-service/internal/models"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// JWTAuth configures and returns Echo's JWT middleware. The token is the
// only source of identity: the handlers downstream trust the userID and
// role it carries and never re-derive them.
func JWTAuth(jwtSecretKey string) echo.MiddlewareFunc {
	config := echojwt.Config{
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(models.JwtCustomClaims)
		},
		SigningKey: []byte(jwtSecretKey),

		// Copy our custom claims into the request context under the keys
		// the handlers read.
		SuccessHandler: func(c echo.Context) {
			userToken := c.Get("user").(*jwt.Token)
			claims := userToken.Claims.(*models.JwtCustomClaims)

			c.Set("userID", claims.UserID)
			c.Set("userEmail", claims.Email)
			c.Set("userRole", claims.Role)
		},

		ErrorHandler: func(c echo.Context, err error) error {
			c.Logger().Errorf("JWT Error: %v", err)

			if errors.Is(err, echojwt.ErrJWTMissing) {
				return c.JSON(http.StatusUnauthorized, models.NewErrorResponse("unauthorized", "Missing or malformed JWT"))
			}
			if errors.Is(err, jwt.ErrTokenMalformed) {
				return c.JSON(http.StatusUnauthorized, models.NewErrorResponse("unauthorized", "Token is malformed"))
			} else if errors.Is(err, jwt.ErrTokenExpired) {
				return c.JSON(http.StatusUnauthorized, models.NewErrorResponse("unauthorized", "Token has expired"))
			} else if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
				return c.JSON(http.StatusUnauthorized, models.NewErrorResponse("unauthorized", "Invalid token signature"))
			}

			return c.JSON(http.StatusUnauthorized, models.NewErrorResponse("unauthorized", "Invalid or expired JWT"))
		},
	}
	return echojwt.WithConfig(config)
}
