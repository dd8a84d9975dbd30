package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const PROD_STRING = "prod"

// Storage backends selectable through DB_BACKEND.
const (
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
	BackendMemory   = "memory"
)

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	HTTPAddr     string
	LogLevel     string

	DBBackend     string
	DBDSN         string
	MongoURI      string
	MongoDatabase string

	JWTSecret         string
	JWTAccessTokenTTL time.Duration
	BcryptCost        int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	LockTTL       time.Duration

	ConflictScopes    string
	TimezoneMode      string
	EnrichConcurrency int

	RateLimitRPS   float64
	RateLimitBurst int
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		log.Printf("failed to load .env file: %v", err)
	}

	cfg := &Config{}

	// Production origin (default: empty)
	cfg.ProdOrigins = getEnv("PROD_ORIGINS", "")

	// Application environment (default: dev)
	appEnvStr := getEnv("APP_ENV", "dev")
	cfg.IsProduction = appEnvStr == PROD_STRING

	// HTTP listen address (default: :8080)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	// Storage backend (default: postgres)
	cfg.DBBackend = getEnv("DB_BACKEND", BackendPostgres)
	switch cfg.DBBackend {
	case BackendPostgres:
		cfg.DBDSN = os.Getenv("DB_DSN")
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("DB_DSN is required")
		}
	case BackendMongo:
		cfg.MongoURI = os.Getenv("MONGODB_URI")
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGODB_URI is required when DB_BACKEND=mongo")
		}
		cfg.MongoDatabase = getEnv("MONGODB_DATABASE", "court_docket")
	case BackendMemory:
	default:
		return nil, fmt.Errorf("invalid DB_BACKEND %q (want postgres, mongo or memory)", cfg.DBBackend)
	}

	// JWT secret is required for signing tokens
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	// JWT access token TTL, parse as time.Duration (e.g. "15m", "1h").
	cfg.JWTAccessTokenTTL, err = getEnvAsDuration("JWT_ACCESS_TOKEN_TTL", 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_TOKEN_TTL: %w", err)
	}

	// Bcrypt cost for password hashing (default: 12)
	cfg.BcryptCost, err = getEnvAsInt("BCRYPT_COST", 12)
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}

	// Redis is optional; without it scheduling locks are process local.
	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.RedisDB, err = getEnvAsInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	cfg.LockTTL, err = getEnvAsDuration("LOCK_TTL", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid LOCK_TTL: %w", err)
	}

	// Conflict detection
	cfg.ConflictScopes = getEnv("SCHEDULER_CONFLICT_SCOPES", "courtroom,counsel")
	cfg.TimezoneMode = getEnv("SCHEDULER_TIMEZONE_MODE", "fixed")
	if cfg.TimezoneMode != "fixed" && cfg.TimezoneMode != "iana" {
		return nil, fmt.Errorf("invalid SCHEDULER_TIMEZONE_MODE %q (want fixed or iana)", cfg.TimezoneMode)
	}
	cfg.EnrichConcurrency, err = getEnvAsInt("SCHEDULER_ENRICH_CONCURRENCY", 8)
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_ENRICH_CONCURRENCY: %w", err)
	}

	// Rate limit for the conflict check endpoint
	rps := getEnv("RATE_LIMIT_RPS", "5")
	cfg.RateLimitRPS, err = strconv.ParseFloat(rps, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: env RATE_LIMIT_RPS value %q is not a number: %w", rps, err)
	}
	cfg.RateLimitBurst, err = getEnvAsInt("RATE_LIMIT_BURST", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer.
// It returns the default value if the variable is not set.
// It returns an error if the variable is set but is not a valid integer.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		// Return 0 and a wrapped error to provide context
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, valStr, err)
	}

	return val, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid duration: %w", key, valStr, err)
	}
	return d, nil
}
