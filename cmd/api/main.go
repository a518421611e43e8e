// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/ayavrik/yamdb-final/internal/admin"
	"github.com/ayavrik/yamdb-final/internal/auth"
	"github.com/ayavrik/yamdb-final/internal/catalog"
	"github.com/ayavrik/yamdb-final/internal/config"
	"github.com/ayavrik/yamdb-final/internal/core"
	"github.com/ayavrik/yamdb-final/internal/health"
	"github.com/ayavrik/yamdb-final/internal/middleware"
	"github.com/ayavrik/yamdb-final/internal/notify"
	"github.com/ayavrik/yamdb-final/internal/review"
	"github.com/ayavrik/yamdb-final/internal/server"
	"github.com/ayavrik/yamdb-final/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	healthHandler := health.NewHandler()
	healthHandler.Register("database", db)
	healthHandler.Register("redis", redis)

	var notifier auth.Notifier
	var mailQueue *notify.MailQueue
	if cfg.Notify.AMQPURL != "" {
		mailQueue, err = notify.NewMailQueue(cfg.Notify)
		if err != nil {
			return err
		}
		notifier = mailQueue
		healthHandler.Register("queue", mailQueue)
		logger.Info("mail queue connected", "queue", cfg.Notify.Queue)
	} else {
		notifier = notify.NewLogNotifier(logger)
		logger.Warn("no AMQP url configured, confirmation codes go to the log")
	}

	codeIssuer := auth.NewCodeIssuer(cfg.Code)

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo)
	userHandler := user.NewHandler(userSvc)

	authRepo := auth.NewRepository(db.DB)
	authSvc := auth.NewService(
		authRepo,
		jwtManager,
		codeIssuer,
		userSvc,
		notifier,
		redis.Client,
	)
	authHandler := auth.NewHandler(authSvc)

	catalogSvc := catalog.NewService(
		catalog.NewCategoryRepository(db.DB),
		catalog.NewGenreRepository(db.DB),
		catalog.NewTitleRepository(db.DB),
	)
	catalogHandler := catalog.NewHandler(catalogSvc)

	reviewSvc := review.NewService(
		review.NewReviewRepository(db.DB),
		review.NewCommentRepository(db.DB),
		catalogSvc,
	)
	reviewHandler := review.NewHandler(reviewSvc)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		Content:    admin.NewStatsRepository(db.DB),
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	authenticator := middleware.Authenticator(jwtManager)
	optionalAuth := middleware.OptionalAuth(jwtManager)
	adminOnly := middleware.RequireAdmin

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r)

		// The catalog and review surface is readable anonymously; write
		// access is decided per request against the rule table, so these
		// routes only resolve the actor.
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)

			catalogHandler.RegisterRoutes(r)
			reviewHandler.RegisterRoutes(r)
		})

		userHandler.RegisterRoutes(r, authenticator, adminOnly)
		adminHandler.RegisterRoutes(r, authenticator, adminOnly)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if mailQueue != nil {
		if err := mailQueue.Close(); err != nil {
			logger.Error("mail queue close error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
