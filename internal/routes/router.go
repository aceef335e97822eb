package routes

import (
	"net/http"

	"device-checkout/internal/config"
	"device-checkout/internal/delivery/http/handler"
	"device-checkout/internal/infrastructure/database/postgres"
	"device-checkout/internal/logger"
	"device-checkout/internal/middleware"
	"device-checkout/internal/usecase/auth"
	"device-checkout/internal/usecase/checkout"
	"device-checkout/internal/usecase/device"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(cfg *config.Config, db *postgres.DB) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(middleware.DefaultMaxRequestSize))
	router.Use(middleware.RateLimitMiddleware(cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst))

	router.GET("/health", func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "Database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Service is running",
		})
	})

	userRepository := postgres.NewUserRepository(db)
	authService := auth.NewService(userRepository, cfg)
	authHandler := handler.NewAuthHandler(authService)

	deviceRepository := postgres.NewDeviceRepository(db)
	deviceService := device.NewService(deviceRepository, cfg.Pool)
	deviceHandler := handler.NewDeviceHandler(deviceService)
	feedbackHandler := handler.NewFeedbackHandler(deviceService)

	checkoutService := checkout.NewService(deviceRepository, cfg.Pool)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService)

	v1 := router.Group("/api/v1")
	{
		authHandler.RegisterRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(cfg, userRepository))
		{
			deviceHandler.RegisterRoutes(protected)
			checkoutHandler.RegisterRoutes(protected)
			feedbackHandler.RegisterRoutes(protected)
		}
	}

	logger.Info("All routes initialized")
	return router
}
