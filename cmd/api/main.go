package main

import (
	"fmt"
	"net/http"
	"os"

	"momolens/internal/config"
	"momolens/internal/database"
	"momolens/internal/handlers"
	"momolens/internal/logger"
	"momolens/internal/middleware"
	"momolens/internal/pipeline"
	"momolens/internal/store"
	"momolens/internal/validator"

	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Open the selected storage backend
	dataStore, err := openStore(appConfig)
	if err != nil {
		return fmt.Errorf("failed to open storage backend: %w", err)
	}
	defer dataStore.Close()

	// Initialize the ingest pipeline and handlers
	ingestPipeline := pipeline.New(dataStore)
	uploadHandler := handlers.NewUploadHandler(ingestPipeline, dataStore, appConfig.DataDir, appConfig.UploadDir)
	transactionHandler := handlers.NewTransactionHandler(dataStore)
	statsHandler := handlers.NewStatsHandler(dataStore)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/api/health", statsHandler.Health)

	// API v1 group
	v1 := router.Group("/api/v1")

	// Upload and archive routes
	uploads := v1.Group("/uploads")
	uploads.POST("", uploadHandler.Upload)
	uploads.GET("", uploadHandler.History)

	archives := v1.Group("/archives")
	archives.GET("", uploadHandler.ListArchives)
	archives.POST("/ingest", uploadHandler.IngestArchive)

	// Transaction routes
	transactions := v1.Group("/transactions")
	transactions.GET("", transactionHandler.List)
	transactions.DELETE("", transactionHandler.Clear)
	transactions.GET("/export", transactionHandler.ExportCSV)

	// Stats routes
	statsGroup := v1.Group("/stats")
	statsGroup.GET("", statsHandler.Overview)
	statsGroup.GET("/monthly", statsHandler.Monthly)
	statsGroup.GET("/categories", statsHandler.Categories)

	log.Infof("Starting MoMo Lens server on port %s (backend: %s)", appConfig.Port, appConfig.StorageBackend)
	return router.Run(":" + appConfig.Port)
}

// openStore builds the configured storage backend.
func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		manager, err := database.NewManager(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		if err := manager.RunMigrations(); err != nil {
			return nil, err
		}
		return store.NewGormStore(manager.DB()), nil
	default:
		return store.NewJSONStore(cfg.DataDir)
	}
}
