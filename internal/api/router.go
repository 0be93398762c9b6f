package api

import (
	"net/http"

	"user-profile-service/internal/api/middleware"
	"user-profile-service/internal/modules/addresses"
	"user-profile-service/internal/modules/payments"
	"user-profile-service/internal/modules/users"
	"user-profile-service/internal/modules/wishlist"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// SetupRoutes sets up all the API endpoints for the application.
func SetupRoutes(
	e *echo.Echo,
	dbPool *pgxpool.Pool,
	jwtSecret string,
	userHandler *users.Handler,
	addressHandler *addresses.Handler,
	paymentHandler *payments.Handler,
	wishlistHandler *wishlist.Handler,
) {
	authMiddleware := middleware.JWTAuth(jwtSecret)
	adminRequired := middleware.AdminRequired()

	// --- Public Routes ---
	e.GET("/healthz", func(c echo.Context) error {
		if err := dbPool.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	authGroup := e.Group("/auth")
	{
		authGroup.POST("/signup", userHandler.Signup)
		authGroup.POST("/login", userHandler.Login)
		authGroup.POST("/activate", userHandler.ActivateAccount)
		authGroup.POST("/resend-activation", userHandler.ResendActivation)
		authGroup.POST("/request-password-reset", userHandler.RequestPasswordReset)
		authGroup.POST("/reset-password", userHandler.ResetPassword)
		authGroup.GET("/google/login", userHandler.GoogleLogin)
		authGroup.GET("/google/callback", userHandler.GoogleCallback)
	}

	// --- Profile & Owned Collections ---
	profileGroup := e.Group("/profile", authMiddleware)
	{
		profileGroup.GET("", userHandler.GetProfile)
		profileGroup.PUT("", userHandler.UpdateProfile)
		profileGroup.DELETE("", userHandler.DeleteAccount)

		profileGroup.GET("/addresses", addressHandler.ListAddresses)
		profileGroup.POST("/addresses", addressHandler.AddAddress)
		profileGroup.PUT("/addresses/:addressId", addressHandler.UpdateAddress)
		profileGroup.DELETE("/addresses/:addressId", addressHandler.DeleteAddress)

		profileGroup.GET("/payment-methods", paymentHandler.ListPaymentMethods)
		profileGroup.POST("/payment-methods", paymentHandler.AddPaymentMethod)
		profileGroup.PUT("/payment-methods/:methodId", paymentHandler.UpdatePaymentMethod)
		profileGroup.DELETE("/payment-methods/:methodId", paymentHandler.DeletePaymentMethod)

		profileGroup.GET("/wishlist", wishlistHandler.ListItems)
		profileGroup.POST("/wishlist", wishlistHandler.AddItem)
		profileGroup.PUT("/wishlist/:itemId", wishlistHandler.UpdateItem)
		profileGroup.DELETE("/wishlist/:itemId", wishlistHandler.DeleteItem)
	}

	// --- Admin Routes ---
	adminGroup := e.Group("/admin", authMiddleware, adminRequired)
	{
		adminGroup.GET("/users", userHandler.AdminListUsers)
	}
}
