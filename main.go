package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"storefront-backend/cache"
	"storefront-backend/cart"
	"storefront-backend/config"
	"storefront-backend/database"
	"storefront-backend/firebase"
	"storefront-backend/logger"
	"storefront-backend/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load environment variables
	if err := config.LoadEnv(); err != nil {
		logger.Init("info", "console")
		logger.Log.Fatal().Err(err).Msg("error loading .env file")
	}

	logger.Init(config.GetEnv("LOG_LEVEL", "info"), config.GetEnv("LOG_FORMAT", "json"))

	// Validate critical environment variables
	if err := config.ValidateEnv(); err != nil {
		logger.Log.Fatal().Err(err).Msg("environment validation failed")
	}

	// Initialize database
	db, err := database.Connect()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Create default admin user if not exists
	if err := database.CreateDefaultAdmin(db); err != nil {
		logger.Log.Warn().Err(err).Msg("could not create default admin")
	}

	if err := firebase.Init(); err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to initialize firebase")
	}
	storageClient := firebase.NewStorageClient()

	fsClient, err := firebase.Firestore(context.Background())
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to create firestore client")
	}

	cartService := cart.NewService(cart.NewFirestoreStore(fsClient), cart.NewCatalog(db))

	redisDB, _ := strconv.Atoi(config.GetEnv("REDIS_DB", "0"))
	productCache, err := cache.New(
		config.GetEnv("REDIS_ADDR", ""),
		config.GetEnv("REDIS_PASSWORD", ""),
		redisDB,
		5*time.Minute,
	)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("redis unavailable, product cache disabled")
	}

	// Setup Gin router
	if config.GetEnv("GIN_MODE", "") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// Limit multipart form memory to 10MB
	r.MaxMultipartMemory = 10 << 20

	// CORS configuration - filter out empty strings from AllowOrigins
	origins := []string{os.Getenv("FRONTEND_URL"), os.Getenv("ADMIN_URL")}
	var filteredOrigins []string
	for _, o := range origins {
		if o != "" {
			filteredOrigins = append(filteredOrigins, o)
		}
	}
	if len(filteredOrigins) == 0 {
		filteredOrigins = []string{"http://localhost:3000"}
		logger.Log.Warn().Msg("no CORS origins configured, defaulting to http://localhost:3000")
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     filteredOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Setup routes
	routes.SetupRoutes(r, db, storageClient, cartService, productCache)

	// Start server with graceful shutdown
	port := config.GetEnv("PORT", "8080")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// Run server in a goroutine
	go func() {
		logger.Log.Info().Str("port", port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("shutting down server")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	if err := fsClient.Close(); err != nil {
		logger.Log.Warn().Err(err).Msg("error closing firestore client")
	}

	if productCache != nil {
		if err := productCache.Close(); err != nil {
			logger.Log.Warn().Err(err).Msg("error closing redis connection")
		}
	}

	// Close database connection
	sqlDB, err := db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Log.Warn().Err(err).Msg("error closing database connection")
		}
	}

	logger.Log.Info().Msg("server exited gracefully")
}
