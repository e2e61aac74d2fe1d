package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	JWTSecret string

	DB     DatabaseConfig
	Redis  RedisConfig
	S3     S3Config
	Upload UploadConfig
	Worker WorkerConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// S3Config contains the object storage configuration for product assets.
// Endpoint overrides the default virtual-host style URL and switches the
// client to path-style addressing (used for S3-compatible stores and tests).
type S3Config struct {
	Region          string
	Bucket          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// UploadConfig bounds individual asset sizes accepted by the submission pipeline.
type UploadConfig struct {
	MaxImageBytes int64
	MaxVideoBytes int64
}

// WorkerConfig contains interval configuration for background workers.
type WorkerConfig struct {
	JanitorInterval   time.Duration
	SubmissionMaxAge  time.Duration
	ResetAfterSuccess time.Duration
	ResetAfterError   time.Duration
	SnapshotTTL       time.Duration
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// S3 product asset bucket
	cfg.S3 = S3Config{
		Region:          getEnv("S3_REGION", "ap-southeast-1"),
		Bucket:          getEnv("S3_BUCKET", "quadramall-assets"),
		Endpoint:        getEnv("S3_ENDPOINT", ""),
		AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
	}

	// Upload limits
	cfg.Upload = UploadConfig{
		MaxImageBytes: getEnvInt64("UPLOAD_MAX_IMAGE_BYTES", 25<<20),
		MaxVideoBytes: getEnvInt64("UPLOAD_MAX_VIDEO_BYTES", 100<<20),
	}

	// Workers and submission lifecycle (durations)
	var err error
	if cfg.Worker.JanitorInterval, err = parseDurationEnv("JANITOR_INTERVAL", "1m"); err != nil {
		return nil, fmt.Errorf("invalid JANITOR_INTERVAL: %w", err)
	}
	if cfg.Worker.SubmissionMaxAge, err = parseDurationEnv("SUBMISSION_MAX_AGE", "30m"); err != nil {
		return nil, fmt.Errorf("invalid SUBMISSION_MAX_AGE: %w", err)
	}
	if cfg.Worker.ResetAfterSuccess, err = parseDurationEnv("PROGRESS_RESET_SUCCESS", "1500ms"); err != nil {
		return nil, fmt.Errorf("invalid PROGRESS_RESET_SUCCESS: %w", err)
	}
	if cfg.Worker.ResetAfterError, err = parseDurationEnv("PROGRESS_RESET_ERROR", "3s"); err != nil {
		return nil, fmt.Errorf("invalid PROGRESS_RESET_ERROR: %w", err)
	}
	if cfg.Worker.SnapshotTTL, err = parseDurationEnv("SUBMISSION_SNAPSHOT_TTL", "1h"); err != nil {
		return nil, fmt.Errorf("invalid SUBMISSION_SNAPSHOT_TTL: %w", err)
	}

	// Basic validation for DB parameters — keeps messages concise and helpful.
	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	// Validate JWT_SECRET
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for authentication")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// getEnvInt64 returns the value of an environment variable as an int64 or a default if empty/invalid.
func getEnvInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return i
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
