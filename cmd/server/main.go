package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/nekogravitycat/court-docket-backend/internal/app"
	"github.com/nekogravitycat/court-docket-backend/internal/config"
	"github.com/nekogravitycat/court-docket-backend/internal/db"
	"github.com/nekogravitycat/court-docket-backend/internal/logger"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.New(cfg.LogLevel, !cfg.IsProduction)

	appCfg := app.Config{
		IsProduction:      cfg.IsProduction,
		ProdOrigins:       cfg.ProdOrigins,
		Logger:            log,
		Backend:           cfg.DBBackend,
		LockTTL:           cfg.LockTTL,
		JWTSecret:         cfg.JWTSecret,
		JWTTTL:            cfg.JWTAccessTokenTTL,
		BcryptCost:        cfg.BcryptCost,
		ConflictScopes:    cfg.ConflictScopes,
		TimezoneMode:      cfg.TimezoneMode,
		EnrichConcurrency: cfg.EnrichConcurrency,
		RateLimitRPS:      cfg.RateLimitRPS,
		RateLimitBurst:    cfg.RateLimitBurst,
	}

	// Connect DB
	switch cfg.DBBackend {
	case config.BackendPostgres:
		pool := connectPostgres(ctx, log, cfg.DBDSN)
		defer pool.Close()
		appCfg.DBPool = pool
	case config.BackendMongo:
		client, database := connectMongo(ctx, log, cfg.MongoURI, cfg.MongoDatabase)
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Warn().Err(err).Msg("mongo disconnect failed")
			}
		}()
		appCfg.MongoDB = database
	case config.BackendMemory:
		log.Warn().Msg("using in-memory storage; data is lost on restart")
	}

	// Redis backs the scheduling locks when configured
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("failed to connect to redis")
		}
		defer rdb.Close()
		appCfg.Redis = rdb
	}

	container, err := app.NewContainer(appCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build application")
	}

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server in separate goroutine
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("backend", cfg.DBBackend).Msg("server running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited gracefully")
}

func connectPostgres(ctx context.Context, log zerolog.Logger, dsn string) *pgxpool.Pool {
	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to db")
	}
	if err := db.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("failed to apply schema")
	}
	return pool
}

func connectMongo(ctx context.Context, log zerolog.Logger, uri, database string) (*mongo.Client, *mongo.Database) {
	client, mdb, err := db.NewMongo(ctx, uri, database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongo")
	}
	if err := db.EnsureIndexes(ctx, mdb); err != nil {
		log.Fatal().Err(err).Msg("failed to create mongo indexes")
	}
	return client, mdb
}
