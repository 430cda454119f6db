package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/kursadbilgin/outreach-engine/internal/config"
	"github.com/kursadbilgin/outreach-engine/internal/handler"
	"github.com/kursadbilgin/outreach-engine/internal/infra/postgresql"
	"github.com/kursadbilgin/outreach-engine/internal/infra/postgresql/migrations"
	infraredis "github.com/kursadbilgin/outreach-engine/internal/infra/redis"
	"github.com/kursadbilgin/outreach-engine/internal/observability"
	"github.com/kursadbilgin/outreach-engine/internal/provider"
	"github.com/kursadbilgin/outreach-engine/internal/queue"
	"github.com/kursadbilgin/outreach-engine/internal/repository"
	"github.com/kursadbilgin/outreach-engine/internal/service"
	"github.com/kursadbilgin/outreach-engine/internal/transport"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to initialize logger", zap.Error(err))
	}
	defer logger.Sync() //nolint:errcheck

	db, err := postgresql.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("postgres initialization failed", zap.Error(err))
	}

	if err := migrations.Migrate(db); err != nil {
		logger.Fatal("database migrations failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("postgres underlying db init failed", zap.Error(err))
	}
	defer sqlDB.Close()

	rdb, err := infraredis.NewRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	rateLimiter, err := infraredis.NewRedisRateLimiter(rdb, cfg.RateLimitPerSec)
	if err != nil {
		logger.Fatal("rate limiter initialization failed", zap.Error(err))
	}

	rabbit, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatal("rabbitmq initialization failed", zap.Error(err))
	}
	notifier := queue.NewAMQPNotifier(rabbit)
	defer notifier.Close() //nolint:errcheck

	renderer, err := provider.NewHTTPRenderer(cfg.TemplateServiceURL)
	if err != nil {
		logger.Fatal("renderer initialization failed", zap.Error(err))
	}
	webhookTransport, err := provider.NewWebhookTransport(cfg.TransportWebhookURL)
	if err != nil {
		logger.Fatal("transport initialization failed", zap.Error(err))
	}

	metrics := observability.NewMetrics()

	scheduleRepo := repository.NewGormScheduleRepo(db)
	attemptRepo := repository.NewGormAttemptRepo(db)
	contactRepo := repository.NewGormContactRepo(db)
	conversationRepo := repository.NewGormConversationRepo(db)
	activityRepo := repository.NewGormActivityRepo(db)

	activityLog := service.NewActivityLog(activityRepo, logger)

	enrollment, err := service.NewEnrollmentService(scheduleRepo, attemptRepo, activityLog, logger)
	if err != nil {
		logger.Fatal("enrollment service initialization failed", zap.Error(err))
	}
	enrollment.SetMetrics(metrics)

	processor, err := service.NewAttemptProcessor(
		attemptRepo, scheduleRepo, contactRepo,
		renderer, webhookTransport, rateLimiter,
		activityLog, cfg.ProcessBatchSize, logger,
	)
	if err != nil {
		logger.Fatal("attempt processor initialization failed", zap.Error(err))
	}
	processor.SetMetrics(metrics)

	loop, err := service.NewSchedulerLoop(processor, time.Duration(cfg.TickIntervalSeconds)*time.Second, logger)
	if err != nil {
		logger.Fatal("scheduler loop initialization failed", zap.Error(err))
	}
	loop.SetMetrics(metrics)

	evaluator, err := service.NewHandoverEvaluator(conversationRepo, logger)
	if err != nil {
		logger.Fatal("handover evaluator initialization failed", zap.Error(err))
	}
	evaluator.SetMetrics(metrics)

	executor, err := service.NewHandoverExecutor(notifier, conversationRepo, activityLog, logger)
	if err != nil {
		logger.Fatal("handover executor initialization failed", zap.Error(err))
	}
	executor.SetMetrics(metrics)

	app := fiber.New(fiber.Config{
		ErrorHandler:          transport.ErrorHandler(logger),
		DisableStartupMessage: true,
	})
	app.Use(metrics.HTTPMiddleware())
	handler.RegisterHealthRoutes(app, sqlDB, rdb)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	if err := handler.RegisterOutreachRoutes(app, scheduleRepo, attemptRepo, contactRepo, enrollment, evaluator, executor); err != nil {
		logger.Fatal("route registration failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, groupCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("outreach-engine started", zap.Int("port", cfg.APIPort))
		return app.Listen(fmt.Sprintf(":%d", cfg.APIPort))
	})

	g.Go(func() error {
		return loop.Start(groupCtx)
	})

	g.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil {
		logger.Error("outreach-engine stopped with error", zap.Error(err))
	}
	logger.Info("outreach-engine stopped")
}
