package main

import (
	"commerce/internal/handler"
	mid "commerce/internal/middleware"
	"commerce/pkg/cache"
	"commerce/pkg/config"
	"commerce/pkg/database"
	"commerce/pkg/jwtutil"
	"commerce/pkg/logger"
	"commerce/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load("8081")
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	defer log.Sync()
	log.Info("Starting storefront service...", cfg.LogConfig()...)

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized", zap.String("metrics_prefix", cfg.Metrics.Prefix))

	// Initialize database
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize the optional Redis cache for listings
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
	e.GET("/health", handler.HealthCheck("store"))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Catalog browsing
	e.GET("/api/products", handler.ListStoreProducts)
	e.GET("/api/categories", handler.CategoryMenu)
	e.GET("/api/categories/:slug/products", handler.ListCategoryProducts)

	// Authentication
	e.POST("/api/auth/register", handler.Register)
	e.POST("/api/auth/login", handler.Login)
	e.GET("/api/auth/me", handler.Me, mid.AuthMiddleware)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
