package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/autoscuolaaba/archivio-live-lezioni/internal/catalog"
	"github.com/autoscuolaaba/archivio-live-lezioni/internal/core/port"
	"github.com/autoscuolaaba/archivio-live-lezioni/internal/infra/config"
	"github.com/autoscuolaaba/archivio-live-lezioni/internal/infra/database"
	"github.com/autoscuolaaba/archivio-live-lezioni/internal/infra/logger"
	redisinfra "github.com/autoscuolaaba/archivio-live-lezioni/internal/infra/redis"
	"github.com/autoscuolaaba/archivio-live-lezioni/internal/infra/security"
	memoryrepo "github.com/autoscuolaaba/archivio-live-lezioni/internal/repository/memory"
	postgresrepo "github.com/autoscuolaaba/archivio-live-lezioni/internal/repository/postgres"
	redisrepo "github.com/autoscuolaaba/archivio-live-lezioni/internal/repository/redis"
	s3repo "github.com/autoscuolaaba/archivio-live-lezioni/internal/repository/s3"
	"github.com/autoscuolaaba/archivio-live-lezioni/internal/transport/http/middleware"
	"github.com/autoscuolaaba/archivio-live-lezioni/internal/transport/http/routes"
	"github.com/autoscuolaaba/archivio-live-lezioni/internal/usecase"
	"github.com/autoscuolaaba/archivio-live-lezioni/internal/youtube"
)

// Application wires every layer of the portal together.
type Application struct {
	cfg     *config.AppConfig
	engine  *gin.Engine
	logger  *zap.Logger
	pool    *pgxpool.Pool
	redis   *redisinfra.Client
	limiter *usecase.LoginRateLimiter
}

// New builds the application from configuration, running pending
// database migrations along the way.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	if cfg.Session.Secret == "" {
		return nil, security.ErrMissingSecret
	}

	if err := database.RunMigrations(ctx, cfg.Postgres.DSN()); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	codec, err := security.NewSessionCodec(cfg.Session.Secret, cfg.Session.Duration(), nil)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init session codec: %w", err)
	}

	students := postgresrepo.NewStudentRepository(pool)

	var redisClient *redisinfra.Client
	var attempts port.AttemptStore
	if cfg.RateLimit.Store == "redis" && cfg.Redis.Enabled {
		redisClient, err = redisinfra.NewClient(cfg.Redis, log)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("init redis: %w", err)
		}
		attempts = redisrepo.NewAttemptStore(redisClient.Client(), "aba:login-attempts")
	} else {
		attempts = memoryrepo.NewAttemptStore()
	}

	limiter := usecase.NewLoginRateLimiter(attempts, cfg.RateLimit.MaxAttempts, cfg.RateLimit.Window, nil, log)

	authService, err := usecase.NewAuthService(students, codec, cfg.Login.FailureDelay, nil, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init auth service: %w", err)
	}

	catalogService, err := catalog.NewService(cfg.Catalog.CacheFile, cfg.Catalog.MockCacheFile, cfg.Catalog.ReloadInterval, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init catalog: %w", err)
	}

	liveClient, err := youtube.NewClient(cfg.YouTube.APIKey, cfg.YouTube.ChannelID, cfg.YouTube.CacheTTL, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init youtube client: %w", err)
	}

	avatars, err := s3repo.NewAvatarStore(ctx, cfg.Storage)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init avatar store: %w", err)
	}

	notificationService := usecase.NewNotificationService(students, catalogService, nil)
	profileService := usecase.NewProfileService(students, avatars, nil, log)

	metrics, err := middleware.NewHTTPMetrics(nil)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	deps := routes.Dependencies{
		Config:   cfg,
		Logger:   log,
		Catalog:  catalogService,
		Live:     liveClient,
		Metrics:  metrics,
		Database: pool,
		Services: routes.ServiceSet{
			Auth:          authService,
			Limiter:       limiter,
			Notifications: notificationService,
			Profile:       profileService,
		},
	}
	if redisClient != nil {
		deps.Cache = redisClient
	}

	engine := routes.Register(deps)

	return &Application{
		cfg:     cfg,
		engine:  engine,
		logger:  log,
		pool:    pool,
		redis:   redisClient,
		limiter: limiter,
	}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down
// gracefully.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()

	a.limiter.StartSweeper(ctx, a.cfg.RateLimit.SweepInterval)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting lesson archive portal",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
