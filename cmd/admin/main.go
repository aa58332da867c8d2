package main

import (
	"commerce/internal/handler"
	mid "commerce/internal/middleware"
	"commerce/pkg/cache"
	"commerce/pkg/config"
	"commerce/pkg/database"
	"commerce/pkg/logger"
	"commerce/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load("8080")
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	defer log.Sync()
	log.Info("Starting admin service...", cfg.LogConfig()...)

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized", zap.String("metrics_prefix", cfg.Metrics.Prefix))

	// Initialize database
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize the cache so admin writes can invalidate storefront listings
	if err := cache.InitCache(cfg); err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	if cache.Enabled() {
		log.Info("Redis cache connected", zap.String("addr", cfg.Redis.Addr))
	}

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(mid.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(mid.MetricsMiddleware)

	// Operational endpoints
	e.GET("/health", handler.HealthCheck("admin"))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Category API routes
	e.GET("/api/categories", handler.ListCategories)
	e.POST("/api/categories", handler.CreateCategory)

	// Product API routes
	e.GET("/api/products", handler.ListProducts)
	e.POST("/api/products", handler.CreateProduct)
	e.DELETE("/api/products", handler.DeleteProduct)
	e.GET("/api/products/edit/:slug", handler.GetProductBySlug)
	e.POST("/api/products/edit/:slug", handler.UpdateProductBySlug)

	// User API routes
	e.GET("/api/users", handler.ListUsers)
	e.GET("/api/users/edit/:id", handler.GetUser)
	e.DELETE("/api/users/edit/:id", handler.DeleteUser)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
