package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"routine_review_service/internal/app"
	"routine_review_service/internal/infra/config"
	idb "routine_review_service/internal/infra/database"
	"routine_review_service/internal/infra/executor"
	"routine_review_service/internal/infra/gemini"
	"routine_review_service/internal/infra/httpapi"
	"routine_review_service/internal/infra/logger"
	"routine_review_service/internal/infra/redisstore"
	"routine_review_service/internal/infra/scheduler"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Get().Fatalf("FATAL: Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	log := logger.Get()
	log.Infof("Configuration loaded. LogLevel: %s, Environment: %s", cfg.LogLevel, cfg.Environment)

	// Initialize Database Connection
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to database: %v", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully.")

	// Initialize Redis Connection
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Fatalf("FATAL: Could not connect to Redis: %v", err)
	}
	log.Info("Redis connection established successfully.")

	// Initialize Repositories and Stores
	userRepo := idb.NewPostgresUserRepository(db)
	activityRepo := idb.NewPostgresActivityRepository(db)
	rankingRepo := idb.NewPostgresRankingRepository(db)
	groupRepo := idb.NewPostgresGroupRepository(db)
	notificationRepo := idb.NewPostgresNotificationRepository(db)
	reviewStore := redisstore.NewReviewStore(redisClient, log)
	log.Info("Repositories initialized.")

	// Initialize AI Generator
	generator := gemini.NewGenerator(cfg.GeminiAPIKey, cfg.GeminiModel)

	// Initialize the shared worker pool. Its lifecycle belongs to this
	// bootstrap: started here, drained on shutdown.
	pool := executor.NewPool(cfg.PoolCoreWorkers, cfg.PoolMaxWorkers, cfg.PoolQueueSize)
	log.Infof("Worker pool started: core=%d max=%d queue=%d", cfg.PoolCoreWorkers, cfg.PoolMaxWorkers, cfg.PoolQueueSize)

	// Initialize ReviewService
	reviewService := app.NewReviewServiceImpl(
		userRepo,
		activityRepo,
		rankingRepo,
		groupRepo,
		notificationRepo,
		reviewStore,
		generator,
		pool,
		log,
		app.ReviewServiceConfig{
			AITimeout:    cfg.AITimeout,
			BatchTimeout: cfg.BatchTimeout,
		},
	)
	log.Info("Review service initialized.")

	// Initialize ReviewScheduler
	reviewScheduler := scheduler.NewReviewScheduler(
		reviewService,
		log,
		cfg.CronSpecMonthlyReview,
		cfg.CronSpecRetrySweep,
		cfg.BatchTimeout,
	)
	reviewScheduler.Start() // Start the cron jobs

	// Start the admin HTTP surface
	server := httpapi.NewServer(cfg.HTTPAddr, reviewService, log)
	go func() {
		log.Infof("Admin HTTP server listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("FATAL: HTTP server failed: %v", err)
		}
	}()

	log.Info("Application setup complete. Scheduler and HTTP server are running.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit // Block until a signal is received

	log.Info("Shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP server shutdown error: %v", err)
	}
	reviewScheduler.Stop()
	if err := pool.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Worker pool did not drain in time: %v", err)
	}
	// db.Close() and redisClient.Close() are handled by defer
	log.Info("Application shut down gracefully.")
}
