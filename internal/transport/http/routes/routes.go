package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/autoscuolaaba/archivio-live-lezioni/internal/core/port"
	"github.com/autoscuolaaba/archivio-live-lezioni/internal/infra/config"
	"github.com/autoscuolaaba/archivio-live-lezioni/internal/transport/http/handlers"
	"github.com/autoscuolaaba/archivio-live-lezioni/internal/transport/http/middleware"
	"github.com/autoscuolaaba/archivio-live-lezioni/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth          *usecase.AuthService
	Limiter       *usecase.LoginRateLimiter
	Notifications *usecase.NotificationService
	Profile       *usecase.ProfileService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config   *config.AppConfig
	Logger   *zap.Logger
	Services ServiceSet
	Catalog  handlers.CatalogSource
	Live     port.LiveStatusProvider
	Metrics  *middleware.HTTPMetrics
	Database DatabaseChecker
	Cache    CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.SecureHeaders())
	r.Use(middleware.CORS(deps.Config.CORS.AllowedOrigins))

	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	// Everything below passes through the session gateway; the gateway
	// itself knows which paths stay public.
	r.Use(middleware.SessionGateway(middleware.SessionGatewayOptions{
		Auth:          deps.Services.Auth,
		SecureCookies: deps.Config.App.IsProduction(),
		Logger:        deps.Logger,
	}))

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)
	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		authHandler := handlers.NewAuthHandler(
			deps.Services.Auth,
			deps.Services.Limiter,
			deps.Metrics,
			deps.Config.Session.MaxAgeSeconds(),
			deps.Config.App.IsProduction(),
		)
		authHandler.RegisterRoutes(api)

		handlers.NewNotificationsHandler(deps.Services.Notifications).RegisterRoutes(api)
		handlers.NewProfileHandler(deps.Services.Profile).RegisterRoutes(api)
		handlers.NewVideosHandler(deps.Catalog).RegisterRoutes(api)
		handlers.NewLiveHandler(deps.Live).RegisterRoutes(api)
	}

	return r
}
