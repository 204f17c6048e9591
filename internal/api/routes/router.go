package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/goto-masaaki-dm/praise-todo/internal/api/handlers"
	"github.com/goto-masaaki-dm/praise-todo/internal/api/middleware"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/category"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/gamification"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/tag"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/task"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/user"
	"github.com/goto-masaaki-dm/praise-todo/internal/infrastructure/cache"
	"github.com/goto-masaaki-dm/praise-todo/internal/infrastructure/persistence/postgres/connection"
	"github.com/goto-masaaki-dm/praise-todo/pkg/config"
	"github.com/goto-masaaki-dm/praise-todo/pkg/security/auth"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const responseCacheTTL = 5 * time.Minute

// Services are the domain entry points the HTTP layer calls.
type Services struct {
	Users      user.Service
	Tasks      task.Service
	Categories category.Service
	Tags       tag.Service
	Progress   gamification.Service
}

// Dependencies is everything NewRouter wires together. Redis may be nil,
// which turns off rate limiting, the response cache and live progress.
type Dependencies struct {
	Config   *config.Config
	Logger   *zap.Logger
	DB       *connection.Database
	Redis    *cache.RedisClient
	Services Services
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	logger := deps.Logger

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CollectMetrics())
	router.Use(cors.New(corsConfig(cfg.CORS)))
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/progress/ws", "/metrics"})))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	health := map[string]Pinger{"database": deps.DB}
	if deps.Redis != nil {
		health["cache"] = PingFunc(deps.Redis.HealthCheck)
	}
	SetupHealthRoutes(router, health)

	api := router.Group("/api")
	api.Use(middleware.NewAuthMiddleware(auth.NewVerifier(cfg.Auth), logger))

	var (
		responseStore middleware.ResponseStore
		subscriber    handlers.ProgressSubscriber
	)
	if deps.Redis != nil {
		responseStore = deps.Redis
		subscriber = deps.Redis
		if cfg.RateLimit.Enabled {
			limiter := auth.NewRedisRateLimiter(deps.Redis.GetClient(), cfg.Redis.KeyPrefix, cfg.RateLimit.Window, cfg.RateLimit.MaxRequests)
			api.Use(middleware.RateLimitMiddleware(limiter, logger))
		}
	}

	validation := middleware.NewValidationMiddleware(logger)
	responseCache := middleware.NewCacheMiddleware(responseStore, responseCacheTTL, logger)

	s := deps.Services
	NewUserRoutes(handlers.NewUserHandler(s.Users, logger)).RegisterRoutes(api, validation, responseCache)
	NewTaskRoutes(handlers.NewTaskHandler(s.Tasks, logger)).RegisterRoutes(api, validation)
	NewCategoryRoutes(
		handlers.NewCategoryHandler(s.Categories, logger),
		handlers.NewTagHandler(s.Tags, logger),
	).RegisterRoutes(api, validation, responseCache)
	NewProgressRoutes(
		handlers.NewProgressHandler(s.Progress, subscriber, cfg.CORS.AllowedOrigins, logger),
	).RegisterRoutes(api, validation)

	return router
}

var _ Pinger = (*connection.Database)(nil)

func corsConfig(c config.CORSConfig) cors.Config {
	cc := cors.Config{
		AllowOrigins:     c.AllowedOrigins,
		AllowMethods:     c.AllowedMethods,
		AllowHeaders:     c.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Remaining", "X-RateLimit-Reset", "X-Cache"},
		AllowCredentials: c.AllowCredentials,
		AllowWildcard:    true,
		MaxAge:           12 * time.Hour,
	}
	if len(cc.AllowOrigins) == 0 {
		cc.AllowOrigins = nil
		cc.AllowAllOrigins = true
	}
	if len(cc.AllowMethods) == 0 {
		cc.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	return cc
}
