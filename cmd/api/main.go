package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"user-profile-service/internal/api"
	appmw "user-profile-service/internal/api/middleware"
	"user-profile-service/internal/config"
	"user-profile-service/internal/modules/addresses"
	"user-profile-service/internal/modules/payments"
	"user-profile-service/internal/modules/users"
	"user-profile-service/internal/modules/wishlist"
	"user-profile-service/pkg/email"
	"user-profile-service/pkg/events"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

func main() {
	// 1. --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	e := echo.New()

	// 2. --- Middleware ---
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.ClientOrigin},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(appmw.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))

	// 3. --- Database Connection ---
	dbConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to parse database configuration: %v", err)
	}

	dbPool, err := pgxpool.NewWithConfig(context.Background(), dbConfig)
	if err != nil {
		log.Fatalf("Unable to create connection pool: %v", err)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(context.Background()); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	e.Logger.Info("Successfully connected to the database!")

	// 4. --- Shared collaborators ---
	emailer, err := email.NewSESV2Sender(context.Background(), cfg.AWSRegion, cfg.FromEmail)
	if err != nil {
		log.Fatalf("Failed to create SES sender: %v", err)
	}
	templateManager, err := email.NewTemplateManager()
	if err != nil {
		log.Fatalf("Failed to parse email templates: %v", err)
	}
	notifier := events.NewWebhookNotifier(cfg.EventSinkURL)

	googleOAuthConfig := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
		Endpoint:     google.Endpoint,
	}

	// 5. --- Dependency Injection (wiring the modules) ---
	userRepo := users.NewRepository(dbPool)
	userService := users.NewService(userRepo, emailer, templateManager, notifier, cfg.JWTSecret, cfg.ClientOrigin, googleOAuthConfig)
	userHandler := users.NewHandler(userService)

	addressRepo := addresses.NewRepository(dbPool)
	addressService := addresses.NewService(addressRepo, notifier)
	addressHandler := addresses.NewHandler(addressService)

	paymentRepo := payments.NewRepository(dbPool)
	paymentService := payments.NewService(paymentRepo, notifier)
	paymentHandler := payments.NewHandler(paymentService)

	wishlistRepo := wishlist.NewRepository(dbPool)
	wishlistService := wishlist.NewService(wishlistRepo, notifier)
	wishlistHandler := wishlist.NewHandler(wishlistService)

	// 6. --- Routes ---
	api.SetupRoutes(e, dbPool, cfg.JWTSecret,
		userHandler,
		addressHandler,
		paymentHandler,
		wishlistHandler,
	)

	// 7. --- Start server with graceful shutdown ---
	go func() {
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("shutting down the server, an error occurred: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal("Server forced to shutdown: ", err)
	}
	log.Println("Server exiting")
}
