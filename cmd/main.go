package main

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"notes-service/internal/auth"
	"notes-service/internal/handler"
	"notes-service/internal/middleware"
	"notes-service/internal/model"
	"notes-service/internal/quota"
	"notes-service/internal/scope"
	"notes-service/internal/store"
	"notes-service/pkg/config"
	"notes-service/pkg/database"
	"notes-service/pkg/jwtutil"
	"notes-service/pkg/logger"
	"notes-service/prometheus"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting notes service...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	db, err := database.Initialize(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Wire the authorization and tenancy core around the store
	st := store.NewGormStore(db)
	jwt := jwtutil.New(&cfg.JWT)
	resolver := auth.NewResolver(st)
	filter := scope.NewFilter(st)
	enforcer := quota.NewEnforcer(st)

	authHandler := handler.NewAuthHandler(st, jwt)
	noteHandler := handler.NewNoteHandler(filter, enforcer)
	tenantHandler := handler.NewTenantHandler(filter)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover()) // Add recovery middleware
	e.Use(echomiddleware.CORS())    // Add CORS middleware
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Authentication routes - these don't belong under the protected
	// groups since they're for getting access to the API
	authRoutes := e.Group("/auth")
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/register", authHandler.Register)

	// Note routes - all require authentication; tenant scope comes from
	// the resolved principal, never from the request
	notes := e.Group("/notes")
	notes.Use(middleware.Authenticate(jwt, resolver))
	notes.POST("", noteHandler.CreateNote)
	notes.GET("", noteHandler.ListNotes)
	notes.GET("/:id", noteHandler.GetNote)
	notes.PUT("/:id", noteHandler.UpdateNote)
	notes.DELETE("/:id", noteHandler.DeleteNote)

	// Tenant administration - admin role required
	tenants := e.Group("/tenants")
	tenants.Use(middleware.Authenticate(jwt, resolver))
	tenants.POST("/:slug/upgrade", tenantHandler.UpgradePlan, middleware.RequireRole(model.RoleAdmin))

	// Get server port from configuration
	port := cfg.Server.Port

	// Start server
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
