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

	"github.com/carterperez-dev/commerce-backend/internal/account"
	"github.com/carterperez-dev/commerce-backend/internal/admin"
	"github.com/carterperez-dev/commerce-backend/internal/auth"
	"github.com/carterperez-dev/commerce-backend/internal/cache"
	"github.com/carterperez-dev/commerce-backend/internal/cart"
	"github.com/carterperez-dev/commerce-backend/internal/catalog"
	"github.com/carterperez-dev/commerce-backend/internal/config"
	"github.com/carterperez-dev/commerce-backend/internal/core"
	"github.com/carterperez-dev/commerce-backend/internal/health"
	"github.com/carterperez-dev/commerce-backend/internal/mailer"
	"github.com/carterperez-dev/commerce-backend/internal/middleware"
	"github.com/carterperez-dev/commerce-backend/internal/order"
	"github.com/carterperez-dev/commerce-backend/internal/server"
	"github.com/carterperez-dev/commerce-backend/internal/sweeper"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

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

	mongo, err := core.NewMongo(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	logger.Info("mongo connected",
		"database", cfg.Mongo.Database,
		"max_pool_size", cfg.Mongo.MaxPoolSize,
	)

	if err := ensureIndexes(ctx, mongo); err != nil {
		return err
	}

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

	store := cache.NewRedisCache(redis.Client)

	dispatcher := mailer.NewDispatcher(
		mailer.NewSMTPSender(cfg.SMTP),
		cfg.SMTP.QueueSize,
		logger,
	)
	mail := mailer.New(dispatcher, cfg.App, cfg.SMTP, logger)

	accountRepo := account.NewRepository(mongo.Database)
	accountSvc := account.NewService(accountRepo, logger)
	accountHandler := account.NewHandler(accountSvc)

	authSvc := auth.NewService(jwtManager, accountSvc, mail, cfg.JWT, logger)
	authHandler := auth.NewHandler(authSvc, cfg.IsProduction())

	catalogRepo := catalog.NewRepository(mongo.Database)
	catalogSvc := catalog.NewService(catalogRepo, store, cfg.Cache, logger)
	catalogHandler := catalog.NewHandler(catalogSvc)

	cartRepo := cart.NewRepository(mongo.Database)
	cartSvc := cart.NewService(cartRepo, catalogSvc, store, cfg.Cache, logger)
	cartHandler := cart.NewHandler(cartSvc)

	orderRepo := order.NewRepository(mongo.Database)
	orderSvc := order.NewService(
		orderRepo,
		cartSvc,
		accountSvc,
		mail,
		store,
		cfg.Cache,
		logger,
	)
	orderHandler := order.NewHandler(orderSvc)

	sweep := sweeper.New(cartRepo, orderRepo, cfg.Sweep, logger)
	go sweep.Run(ctx)

	healthHandler := health.NewHandler(mongo, redis)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		RedisStats: redis.PoolStats,
		RedisPing:  redis.Ping,
		MongoPing:  mongo.Ping,
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
	adminOnly := middleware.RequireAdmin

	router.Route("/api/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator)
		catalogHandler.RegisterRoutes(r)
		cartHandler.RegisterRoutes(r, authenticator)
		orderHandler.RegisterRoutes(r, authenticator)
		accountHandler.RegisterRoutes(r, authenticator)

		accountHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
		catalogHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
		orderHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
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

	dispatcher.Close()

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := mongo.Close(shutdownCtx); err != nil {
		logger.Error("mongo close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func ensureIndexes(ctx context.Context, m *core.Mongo) error {
	indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := account.EnsureIndexes(indexCtx, m.Database); err != nil {
		return err
	}
	if err := catalog.EnsureIndexes(indexCtx, m.Database); err != nil {
		return err
	}
	if err := order.EnsureIndexes(indexCtx, m.Database); err != nil {
		return err
	}

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
