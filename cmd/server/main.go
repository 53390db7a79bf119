package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nexus-migrator/internal/config"
	"nexus-migrator/internal/controller"
	"nexus-migrator/internal/database"
	"nexus-migrator/internal/middleware"
	"nexus-migrator/internal/migrator"
	"nexus-migrator/internal/schema"
	"nexus-migrator/internal/security"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Set Gin mode
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Load declared table definitions
	loader, err := schema.NewLoader()
	if err != nil {
		log.Fatal("Failed to initialize schema loader:", err)
	}
	declarations, err := loader.LoadPaths(cfg.Schema.Paths)
	if err != nil {
		log.Fatal("Failed to load schema declarations:", err)
	}
	log.Printf("Loaded %d table declarations from %v", len(declarations), cfg.Schema.Paths)

	// Open configured connections
	registry := database.NewRegistry(cfg.DefaultConnection, cfg.TableMapping)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	for name, connCfg := range cfg.Connections {
		if err := registry.Open(ctx, name, connCfg); err != nil {
			log.Fatalf("Failed to open connection %s: %v", name, err)
		}
		log.Printf("Connected to %s (%s)", name, connCfg.Type)
	}
	cancel()
	defer registry.CloseAll()

	// Initialize migration service
	migrationService := migrator.NewService(registry, declarations)

	// Initialize security
	jwtManager := security.NewJWTManager(cfg.Security.JWTSecret, cfg.Security.JWTExpiration)
	authMiddleware := security.NewAuthMiddleware(jwtManager)

	// Initialize rate limiting
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RPM:             cfg.Security.RateLimitPerMinute,
		Burst:           cfg.Security.RateLimitBurst,
		CleanupInterval: 5 * time.Minute,
	})

	// Initialize metrics
	middleware.InitMetrics()

	// Initialize controllers
	migrationController := controller.NewMigrationController(migrationService)
	healthController := controller.NewHealthController(registry)

	// Create Gin router
	router := gin.New()

	// Add middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.Cors())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.PrometheusMiddleware())

	if cfg.Security.EnableRateLimit {
		router.Use(rateLimiter.RateLimit())
	}

	// Health check and metrics endpoints (always available)
	router.GET("/health", healthController.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 group
	api := router.Group("/api/v1")

	auth := api.Group("")
	if cfg.Security.EnableAuth {
		auth.Use(authMiddleware.RequireAuth())
	}
	{
		auth.GET("/connections", migrationController.ListConnections)

		migrations := auth.Group("/migrations")
		{
			migrations.GET("/:connection/diff", migrationController.GetSchemaDiff)
			migrations.GET("/:connection/suggestions", migrationController.GetUpdateSuggestions)
		}
	}

	// Install mutates live schemas; require the operator role when auth is on
	install := api.Group("/migrations")
	if cfg.Security.EnableAuth {
		install.Use(authMiddleware.RequireRole("operator"))
	}
	install.POST("/:connection/install", migrationController.Install)

	// Start server
	log.Printf("Starting server on port %s", cfg.Server.Port)
	log.Printf("Health check available at: http://localhost:%s/health", cfg.Server.Port)

	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
