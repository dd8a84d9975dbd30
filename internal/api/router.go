package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/nekogravitycat/court-docket-backend/internal/auth"
	"github.com/nekogravitycat/court-docket-backend/internal/client"
	clientHttp "github.com/nekogravitycat/court-docket-backend/internal/client/http"
	"github.com/nekogravitycat/court-docket-backend/internal/hearing"
	hearingHttp "github.com/nekogravitycat/court-docket-backend/internal/hearing/http"
	"github.com/nekogravitycat/court-docket-backend/internal/legalcase"
	caseHttp "github.com/nekogravitycat/court-docket-backend/internal/legalcase/http"
	"github.com/nekogravitycat/court-docket-backend/internal/pkg/response"
	"github.com/nekogravitycat/court-docket-backend/internal/user"
	userHttp "github.com/nekogravitycat/court-docket-backend/internal/user/http"
)

// Config carries what the router needs from the rest of the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	Logger       zerolog.Logger

	// Limits for the dry-run conflict check, per user.
	RateLimitRPS   float64
	RateLimitBurst int

	// Health reports whether backing stores are reachable. Nil means always healthy.
	Health func(ctx context.Context) error

	UserService    user.Service
	ClientService  client.Service
	CaseService    legalcase.Service
	HearingService hearing.Service
	JWTManager     *auth.JWTManager
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(RequestLogger(cfg.Logger), gin.Recovery())
	r.Use(cors.New(corsConfig(cfg)))

	r.GET("/healthz", func(c *gin.Context) {
		if cfg.Health != nil {
			if err := cfg.Health(c.Request.Context()); err != nil {
				_ = c.Error(err)
				c.JSON(http.StatusServiceUnavailable, response.ErrorResponse{Error: "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	checkLimiter := RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst)

	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	clientHandler := clientHttp.NewHandler(cfg.ClientService)
	caseHandler := caseHttp.NewHandler(cfg.CaseService)
	hearingHandler := hearingHttp.NewHandler(cfg.HearingService)

	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware)
		clientHttp.RegisterRoutes(v1, clientHandler, authMiddleware)
		caseHttp.RegisterRoutes(v1, caseHandler, authMiddleware)
		hearingHttp.RegisterRoutes(v1, hearingHandler, authMiddleware, checkLimiter)
	}

	return r
}

func corsConfig(cfg Config) cors.Config {
	config := cors.DefaultConfig()
	if cfg.IsProduction {
		var origins []string
		for _, o := range strings.Split(cfg.ProdOrigins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		config.AllowOrigins = origins
	} else {
		config.AllowOrigins = []string{
			"http://localhost:3000", // Frontend dev server
			"http://localhost:8081", // Swagger
		}
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	return config
}
