package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dxgrid/acl-notify/internal/auth"
	"github.com/dxgrid/acl-notify/internal/config"
	"github.com/dxgrid/acl-notify/internal/handler"
	"github.com/dxgrid/acl-notify/internal/infra/postgresql"
	"github.com/dxgrid/acl-notify/internal/infra/postgresql/migrations"
	infraredis "github.com/dxgrid/acl-notify/internal/infra/redis"
	"github.com/dxgrid/acl-notify/internal/notification"
	"github.com/dxgrid/acl-notify/internal/observability"
	"github.com/dxgrid/acl-notify/internal/queue"
	"github.com/dxgrid/acl-notify/internal/transport"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to initialize logger: ", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := migrations.Run(cfg.DatabaseDSN); err != nil {
		logger.Fatal("database migrations failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgresql.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("postgres initialization failed", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := infraredis.NewRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	limiter, err := infraredis.NewRedisRateLimiter(rdb, cfg.RateLimitPerSec)
	if err != nil {
		logger.Fatal("rate limiter initialization failed", zap.Error(err))
	}

	rmq, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatal("rabbitmq initialization failed", zap.Error(err))
	}
	defer rmq.Close()
	audit := queue.NewRabbitMQAuditPublisher(rmq)

	var users handler.UserInfoFetcher
	if cfg.AuthServerURL != "" {
		authClient, err := auth.NewClient(cfg.AuthServerURL)
		if err != nil {
			logger.Fatal("auth client initialization failed", zap.Error(err))
		}
		users = authClient
	}

	metrics := observability.NewMetrics()

	db, err := postgresql.NewPostgresService(pool)
	if err != nil {
		logger.Fatal("postgres service initialization failed", zap.Error(err))
	}

	svc, err := notification.NewService(db, audit, metrics, logger)
	if err != nil {
		logger.Fatal("notification service initialization failed", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		AppName:      "acl-notify",
		ErrorHandler: transport.ErrorHandler(logger),
	})
	app.Use(metrics.HTTPMiddleware())

	handler.RegisterHealthRoutes(app, pool, rdb)
	if err := handler.RegisterNotificationRoutes(app, svc, limiter, users, logger); err != nil {
		logger.Fatal("route registration failed", zap.Error(err))
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metrics.Handler())
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.MetricsPort),
		Handler: metricsMux,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.Listen(fmt.Sprintf(":%d", cfg.APIPort))
	})
	g.Go(func() error {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = metricsServer.Shutdown(shutdownCtx)
		return app.ShutdownWithContext(shutdownCtx)
	})

	logger.Info("acl-notify api started",
		zap.Int("port", cfg.APIPort),
		zap.Int("metricsPort", cfg.MetricsPort),
	)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("server exited", zap.Error(err))
	}
}
