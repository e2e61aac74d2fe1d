package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quadramall/seller-api/internal/cache"
	"github.com/quadramall/seller-api/internal/config"
	"github.com/quadramall/seller-api/internal/database"
	"github.com/quadramall/seller-api/internal/handler"
	"github.com/quadramall/seller-api/internal/middleware"
	"github.com/quadramall/seller-api/internal/pipeline"
	"github.com/quadramall/seller-api/internal/repository"
	"github.com/quadramall/seller-api/internal/service"
	"github.com/quadramall/seller-api/internal/sse"
	"github.com/quadramall/seller-api/internal/storage"
	"github.com/quadramall/seller-api/internal/utils"
	"github.com/quadramall/seller-api/internal/worker"
)

// main is the application entrypoint for the QuadraMall seller API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting seller api")

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	// 3c. Initialize submission snapshot cache
	snapshotCache := cache.NewSubmissionCache(redisClient, cfg.Worker.SnapshotTTL)

	// 4. Initialize JWT signing and the S3 asset client
	utils.InitJWT(cfg.JWTSecret)

	s3Client, err := storage.NewS3Client(&cfg.S3, &cfg.Upload)
	if err != nil {
		log.Error().Err(err).Msg("s3 client initialization failed")
		fmt.Fprintf(os.Stderr, "s3 client initialization failed: %v\n", err)
		os.Exit(1)
	}

	// 5. Initialize repositories
	sellerRepo := repository.NewSellerRepository(db)
	productRepo := repository.NewProductRepository(db)

	// 6. Initialize services
	authSvc := service.NewAuthService(sellerRepo)
	catalogSvc := service.NewCatalogService(productRepo, sellerRepo)
	orchestrator := pipeline.NewOrchestrator(s3Client, catalogSvc)

	hub := sse.NewHub()
	submissionSvc := service.NewSubmissionService(orchestrator, hub, snapshotCache,
		cfg.Worker.ResetAfterSuccess, cfg.Worker.ResetAfterError)

	// 7. Initialize handlers
	handlers := &Handlers{
		Health:     handler.NewHealthHandler(db, redisClient),
		Auth:       handler.NewAuthHandler(authSvc),
		Product:    handler.NewProductHandler(submissionSvc, catalogSvc),
		Submission: handler.NewSubmissionHandler(hub, submissionSvc),
	}

	// 8. Initialize middleware
	jwtMw := middleware.NewJWTMiddleware()

	// 9. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, jwtMw)

	// 10. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 11. Start workers
	go worker.NewJanitorWorker(hub, cfg.Worker.JanitorInterval, cfg.Worker.SubmissionMaxAge).Start(ctx)

	// 12. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 13. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 14. Cancel context to stop workers
	cancel()

	// 15. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health     *handler.HealthHandler
	Auth       *handler.AuthHandler
	Product    *handler.ProductHandler
	Submission *handler.SubmissionHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware) {
	router.GET("/v1/health", handlers.Health.GetHealth)

	router.POST("/v1/auth/login", handlers.Auth.Login)

	// SSE stream authenticates via query param, not the Authorization header.
	router.GET("/v1/seller/submissions/:id/events", handlers.Submission.Stream)

	seller := router.Group("/v1/seller")
	seller.Use(jwtMiddleware.Handle())
	{
		seller.POST("/products", handlers.Product.Create)
		seller.PUT("/products/:id", handlers.Product.Update)
		seller.GET("/products/:id", handlers.Product.GetProduct)
		seller.POST("/variants/preview", handlers.Product.PreviewVariants)
		seller.GET("/submissions/:id", handlers.Submission.GetStatus)
	}
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	// Run migrations
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
