package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	GeminiAPIKey string
	GeminiModel  string

	HTTPAddr    string
	LogLevel    string
	Environment string

	CronSpecMonthlyReview string // batch run for the previous month
	CronSpecRetrySweep    string // re-dispatch of recorded failures

	AITimeout    time.Duration // per-call narrative generation budget
	BatchTimeout time.Duration // ceiling for a whole batch run

	PoolCoreWorkers int
	PoolMaxWorkers  int
	PoolQueueSize   int
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("REDIS_ADDR is not set")
	}
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisDB, err = intEnv("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	cfg.GeminiModel = os.Getenv("GEMINI_MODEL")
	if cfg.GeminiModel == "" {
		cfg.GeminiModel = "gemini-2.0-flash"
	}

	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.CronSpecMonthlyReview = os.Getenv("CRON_SPEC_MONTHLY_REVIEW")
	if cfg.CronSpecMonthlyReview == "" {
		cfg.CronSpecMonthlyReview = "0 9 1 * *" // Default: 09:00 on the 1st
	}
	cfg.CronSpecRetrySweep = os.Getenv("CRON_SPEC_RETRY_SWEEP")
	if cfg.CronSpecRetrySweep == "" {
		cfg.CronSpecRetrySweep = "0 10 * * *" // Default: 10:00 daily
	}

	aiTimeoutSec, err := intEnv("AI_TIMEOUT_SECONDS", 10)
	if err != nil {
		return nil, err
	}
	cfg.AITimeout = time.Duration(aiTimeoutSec) * time.Second

	batchTimeoutMin, err := intEnv("BATCH_TIMEOUT_MINUTES", 30)
	if err != nil {
		return nil, err
	}
	cfg.BatchTimeout = time.Duration(batchTimeoutMin) * time.Minute

	cfg.PoolCoreWorkers, err = intEnv("POOL_CORE_WORKERS", 10)
	if err != nil {
		return nil, err
	}
	cfg.PoolMaxWorkers, err = intEnv("POOL_MAX_WORKERS", 50)
	if err != nil {
		return nil, err
	}
	cfg.PoolQueueSize, err = intEnv("POOL_QUEUE_SIZE", 200)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func intEnv(name string, def int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return v, nil
}
