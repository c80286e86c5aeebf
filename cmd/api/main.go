package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/verif-backoffice/internal/api/http"
	"github.com/spec-kit/verif-backoffice/internal/api/http/handlers"
	"github.com/spec-kit/verif-backoffice/internal/auth"
	"github.com/spec-kit/verif-backoffice/internal/config"
	"github.com/spec-kit/verif-backoffice/internal/events"
	"github.com/spec-kit/verif-backoffice/internal/feed"
	"github.com/spec-kit/verif-backoffice/internal/messaging"
	"github.com/spec-kit/verif-backoffice/internal/observability"
	"github.com/spec-kit/verif-backoffice/internal/persistence"
	"github.com/spec-kit/verif-backoffice/internal/repository"
	"github.com/spec-kit/verif-backoffice/internal/service"
	"github.com/spec-kit/verif-backoffice/internal/worker"
	"github.com/spec-kit/verif-backoffice/pkg/ratelimit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations && pg.PoolHandle() != nil {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}
	store := pg.DocumentStore(logger)

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var (
		sessions     auth.SessionStore
		notifyFeed   feed.Feed
		loginLimiter ratelimit.Limiter
	)
	if redis.Reachable() {
		sessions = auth.NewRedisSessionStore(redis.Client, redis.KeyPrefix)
		notifyFeed = feed.NewRedisFeed(redis.Client, cfg.Notification.FeedChannel, logger)
		loginLimiter = ratelimit.NewRedisLimiter(redis.Client, redis.KeyPrefix)
	} else {
		logger.Warn("redis unavailable; sessions, live feed and rate limits are process-local")
		sessions = auth.NewMemorySessionStore()
		notifyFeed = feed.NewMemoryFeed()
		loginLimiter = ratelimit.NewMemoryLimiter()
	}

	publisher := messaging.NewPublisher(cfg.Notification.KafkaBrokers, cfg.Notification.KafkaTopic, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("closing command publisher", zap.Error(err))
		}
	}()

	dispatcher := events.NewInMemoryDispatcher(logger)

	adminRepo := repository.NewAdminRepository(store)
	submissionRepo := repository.NewSubmissionRepository(store)
	refundRepo := repository.NewRefundRepository(store)
	contactRepo := repository.NewContactRepository(store)
	notificationRepo := repository.NewNotificationRepository(store)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		AdminRepo:    adminRepo,
		SessionStore: sessions,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	adminService := service.NewAdminService(service.AdminDependencies{
		AdminRepo:    adminRepo,
		SessionStore: sessions,
		Logger:       logger,
	})
	submissionService := service.NewSubmissionService(service.SubmissionDependencies{
		SubmissionRepo: submissionRepo,
		Dispatcher:     dispatcher,
	})
	refundService := service.NewRefundService(service.RefundDependencies{
		RefundRepo: refundRepo,
		Dispatcher: dispatcher,
	})
	contactService := service.NewContactService(service.ContactDependencies{
		ContactRepo: contactRepo,
		Dispatcher:  dispatcher,
	})
	notificationService := service.NewNotificationService(cfg.Notification, service.NotificationDependencies{
		NotificationRepo: notificationRepo,
		Feed:             notifyFeed,
		Publisher:        publisher,
		Dispatcher:       dispatcher,
		Logger:           logger,
	})
	statisticsService := service.NewStatisticsService(service.StatisticsDependencies{
		SubmissionRepo:   submissionRepo,
		RefundRepo:       refundRepo,
		ContactRepo:      contactRepo,
		AdminRepo:        adminRepo,
		NotificationRepo: notificationRepo,
	})

	watcher := worker.NewArrivalWatcher(cfg.Worker.WatchInterval(), worker.ArrivalDependencies{
		SubmissionRepo: submissionRepo,
		RefundRepo:     refundRepo,
		ContactRepo:    contactRepo,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})
	worker.StartNotificationWorker(ctx, notificationService, watcher)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), authService)
	metrics := observability.NewMetrics()
	validator := handlers.NewValidator()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService, validator),
		Admins:         handlers.NewAdminsHandler(adminService),
		Submissions:    handlers.NewSubmissionsHandler(submissionService, validator),
		Refunds:        handlers.NewRefundsHandler(refundService, validator),
		Contacts:       handlers.NewContactsHandler(contactService),
		Notifications:  handlers.NewNotificationsHandler(notificationService, logger),
		Statistics:     handlers.NewStatisticsHandler(statisticsService),
		AuthMiddleware: authMiddleware,
		Limiter:        loginLimiter,
		LoginRate: ratelimit.Rate{
			Requests: cfg.RateLimit.LoginRequests,
			Window:   cfg.RateLimit.LoginWindow(),
		},
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	if err := app.Shutdown(); err != nil {
		logger.Warn("fiber shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
