package server

import (
	"context"
	"net/http"
	"time"

	"github.com/abduss/flickpick/internal/auth"
	"github.com/abduss/flickpick/internal/config"
	"github.com/abduss/flickpick/internal/logger"
	"github.com/abduss/flickpick/internal/metrics"
	"github.com/abduss/flickpick/internal/movie"
	"github.com/abduss/flickpick/internal/user"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BucketChecker reports whether the poster bucket exists.
type BucketChecker interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
}

// Dependencies groups the services required by the HTTP router.
type Dependencies struct {
	Config       config.Config
	Logger       *zap.Logger
	Store        Pinger
	ObjectStore  BucketChecker
	AuthService  *auth.Service
	UserService  *user.Service
	MovieService *movie.Service
}

// NewRouter builds a Gin engine with foundational middleware and routes.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.Middleware(deps.Logger))
	router.Use(metrics.Middleware())
	router.Use(cors.New(corsConfig(deps.Config.Server.AllowedOrigins)))

	registerHealthRoutes(router, deps)
	if path := deps.Config.Metrics.PrometheusPath; path != "" {
		metrics.Register(router, path)
	}

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Welcome to FlickPick!")
	})
	if docs := deps.Config.Server.DocsPath; docs != "" {
		router.GET("/documentation", func(c *gin.Context) {
			c.File(docs)
		})
	}

	if deps.AuthService != nil {
		limiter := NewLoginLimiter(deps.Config.Auth.LoginRatePerMin, deps.Config.Auth.LoginBurst)
		auth.RegisterRoutes(router, deps.AuthService, limiter.Middleware())

		protected := router.Group("/")
		protected.Use(auth.AuthMiddleware(deps.AuthService.Tokens()))

		if deps.MovieService != nil {
			movie.RegisterRoutes(protected, deps.MovieService)
		}
		if deps.UserService != nil {
			user.RegisterRoutes(protected, deps.UserService)
		}
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", logger.CorrelationIDHeader},
		ExposeHeaders: []string{logger.CorrelationIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
