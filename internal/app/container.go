package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/nekogravitycat/court-docket-backend/internal/api"
	"github.com/nekogravitycat/court-docket-backend/internal/auth"
	"github.com/nekogravitycat/court-docket-backend/internal/client"
	"github.com/nekogravitycat/court-docket-backend/internal/config"
	"github.com/nekogravitycat/court-docket-backend/internal/hearing"
	"github.com/nekogravitycat/court-docket-backend/internal/legalcase"
	"github.com/nekogravitycat/court-docket-backend/internal/metrics"
	"github.com/nekogravitycat/court-docket-backend/internal/pkg/lock"
	"github.com/nekogravitycat/court-docket-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	Logger       zerolog.Logger

	// Backend selects the store: config.BackendPostgres needs DBPool,
	// config.BackendMongo needs MongoDB, config.BackendMemory needs neither.
	Backend string
	DBPool  *pgxpool.Pool
	MongoDB *mongo.Database

	// Redis is optional. Without it schedule locks only hold within this process.
	Redis   *redis.Client
	LockTTL time.Duration

	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int

	ConflictScopes    string
	TimezoneMode      string
	EnrichConcurrency int
	RateLimitRPS      float64
	RateLimitBurst    int
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router         *gin.Engine
	JWTManager     *auth.JWTManager
	UserService    user.Service
	ClientService  client.Service
	CaseService    legalcase.Service
	HearingService hearing.Service
}

type repositories struct {
	users    user.Repository
	clients  client.Repository
	cases    legalcase.Repository
	hearings hearing.Repository
	health   func(ctx context.Context) error
}

func newRepositories(cfg Config) (*repositories, error) {
	switch cfg.Backend {
	case config.BackendPostgres, "":
		if cfg.DBPool == nil {
			return nil, fmt.Errorf("postgres backend needs a connection pool")
		}
		return &repositories{
			users:    user.NewPgxRepository(cfg.DBPool),
			clients:  client.NewPgxRepository(cfg.DBPool),
			cases:    legalcase.NewPgxRepository(cfg.DBPool),
			hearings: hearing.NewPgxRepository(cfg.DBPool),
			health:   cfg.DBPool.Ping,
		}, nil
	case config.BackendMongo:
		if cfg.MongoDB == nil {
			return nil, fmt.Errorf("mongo backend needs a database handle")
		}
		return &repositories{
			users:    user.NewMongoRepository(cfg.MongoDB),
			clients:  client.NewMongoRepository(cfg.MongoDB),
			cases:    legalcase.NewMongoRepository(cfg.MongoDB),
			hearings: hearing.NewMongoRepository(cfg.MongoDB),
			health: func(ctx context.Context) error {
				return cfg.MongoDB.Client().Ping(ctx, readpref.Primary())
			},
		}, nil
	case config.BackendMemory:
		return &repositories{
			users:    user.NewMemoryRepository(),
			clients:  client.NewMemoryRepository(),
			cases:    legalcase.NewMemoryRepository(),
			hearings: hearing.NewMemoryRepository(),
		}, nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) (*Container, error) {
	repos, err := newRepositories(cfg)
	if err != nil {
		return nil, err
	}

	metrics.Register()

	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasher(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	var locker lock.Locker = lock.NewLocalLocker()
	if cfg.Redis != nil {
		ttl := cfg.LockTTL
		if ttl <= 0 {
			ttl = 10 * time.Second
		}
		locker = lock.NewRedisLocker(cfg.Redis, ttl)
	}

	// User Module
	userService := user.NewService(repos.users, passwordHasher, cfg.Logger)

	// Client Module
	clientService := client.NewService(repos.clients, cfg.Logger)

	// Case Module; deleting a case clears its hearings.
	caseService := legalcase.NewService(repos.cases, repos.hearings)

	// Hearing Module
	resolver := hearing.NewZoneResolver(cfg.TimezoneMode)
	scanner := hearing.NewScanner(repos.hearings, caseService, hearing.ScannerConfig{
		Resolver:          resolver,
		Scopes:            hearing.ParseScopes(cfg.ConflictScopes),
		EnrichConcurrency: cfg.EnrichConcurrency,
	}, cfg.Logger)
	hearingService := hearing.NewService(repos.hearings, caseService, scanner, locker, resolver, cfg.Logger)

	cfg.Logger.Info().
		Str("backend", cfg.Backend).
		Str("conflict_scopes", scanner.Scopes().String()).
		Str("timezone_mode", cfg.TimezoneMode).
		Bool("distributed_locks", cfg.Redis != nil).
		Msg("scheduling configured")

	health := repos.health
	if cfg.Redis != nil {
		health = withRedis(health, cfg.Redis)
	}

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:   cfg.IsProduction,
		ProdOrigins:    cfg.ProdOrigins,
		Logger:         cfg.Logger,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		Health:         health,
		UserService:    userService,
		ClientService:  clientService,
		CaseService:    caseService,
		HearingService: hearingService,
		JWTManager:     jwtManager,
	})

	return &Container{
		Router:         router,
		JWTManager:     jwtManager,
		UserService:    userService,
		ClientService:  clientService,
		CaseService:    caseService,
		HearingService: hearingService,
	}, nil
}

func withRedis(next func(context.Context) error, rdb *redis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		if next != nil {
			if err := next(ctx); err != nil {
				return err
			}
		}
		return rdb.Ping(ctx).Err()
	}
}
