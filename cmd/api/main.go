package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/leadops/lead-dashboard/internal/api/http"
	"github.com/leadops/lead-dashboard/internal/api/http/handlers"
	"github.com/leadops/lead-dashboard/internal/auth"
	"github.com/leadops/lead-dashboard/internal/config"
	"github.com/leadops/lead-dashboard/internal/domain"
	"github.com/leadops/lead-dashboard/internal/events"
	"github.com/leadops/lead-dashboard/internal/observability"
	"github.com/leadops/lead-dashboard/internal/persistence"
	"github.com/leadops/lead-dashboard/internal/repository"
	"github.com/leadops/lead-dashboard/internal/service"
	"github.com/leadops/lead-dashboard/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
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

	if pg.Configured() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), persistence.DefaultMigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	collections, err := newCollectionStore(cfg, pg)
	if err != nil {
		logger.Fatal("failed to open lead store", zap.Error(err))
	}
	leadStore := repository.NewLeadStore(collections, logger)

	dashboardService := service.NewDashboardService(service.DashboardDependencies{
		Store:          leadStore,
		Cache:          service.NewSnapshotCache(redis.ClientHandle(), cfg.Dashboard.CacheTTL()),
		Dispatcher:     dispatcher,
		Metrics:        metrics,
		Logger:         logger,
		ThresholdDays:  cfg.Dashboard.DelayThresholdDays,
		Location:       cfg.Dashboard.Location(),
		SampleFallback: cfg.Dashboard.SampleFallback,
	})

	notificationService := service.NewNotificationService(dispatcher, dashboardService, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	if client := redis.ClientHandle(); client != nil {
		bridge := events.NewRedisBridge(client, cfg.Redis.ChangeChannel, dispatcher, logger)
		if err := bridge.Start(ctx); err != nil {
			logger.Warn("change bridge disabled", zap.Error(err))
		} else {
			defer bridge.Stop()
		}
	}

	if cfg.Store.Backend == config.StoreBackendFile && cfg.Store.Watch {
		watcher, err := repository.NewFileWatcher(cfg.Store.Dir, notificationService.CollectionChanged, logger)
		if err != nil {
			logger.Fatal("failed to create store watcher", zap.Error(err))
		}
		if err := watcher.Start(ctx); err != nil {
			logger.Fatal("failed to start store watcher", zap.Error(err))
		}
		defer watcher.Stop()
	}

	monitor := worker.NewDelayMonitor(dashboardService, metrics, logger, cfg.Dashboard.MonitorInterval())
	monitor.Start(ctx)
	defer monitor.Stop()

	operators := newOperatorRepository(cfg, pg, logger)
	authService := service.NewAuthService(cfg.Auth, operators)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), operators)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	var checks []handlers.HealthCheck
	if pg.Configured() {
		checks = append(checks, handlers.HealthCheck{Name: "postgres", Ping: pg.Ping})
	}
	if redis.ClientHandle() != nil {
		checks = append(checks, handlers.HealthCheck{Name: "redis", Ping: redis.Ping})
	}

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, checks...),
		Auth:           handlers.NewAuthHandler(authService),
		Dashboard:      handlers.NewDashboardHandler(dashboardService),
		Collections:    handlers.NewCollectionsHandler(dashboardService),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func newCollectionStore(cfg *config.Config, pg *persistence.Postgres) (repository.CollectionStore, error) {
	if cfg.Store.Backend == config.StoreBackendPostgres {
		return repository.NewPostgresCollectionStore(pg.PoolHandle()), nil
	}
	return repository.NewFileCollectionStore(cfg.Store.Dir)
}

func newOperatorRepository(cfg *config.Config, pg *persistence.Postgres, logger *zap.Logger) repository.OperatorRepository {
	if pg.Configured() {
		return repository.NewOperatorRepository(pg.PoolHandle())
	}
	var seed []domain.Operator
	if bootstrap := service.BootstrapOperator(cfg.Auth); bootstrap != nil {
		seed = append(seed, *bootstrap)
	} else {
		logger.Warn("no database and no AUTH_BOOTSTRAP_EMAIL; nobody can log in")
	}
	return repository.NewMemoryOperatorRepository(seed...)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
