package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/leadops/lead-dashboard/internal/config"
	"github.com/leadops/lead-dashboard/internal/events"
	"github.com/leadops/lead-dashboard/internal/observability"
	"github.com/leadops/lead-dashboard/internal/persistence"
	"github.com/leadops/lead-dashboard/internal/repository"
	"github.com/leadops/lead-dashboard/internal/service"
)

// environment holds the connections a command needs. close releases them.
type environment struct {
	cfg       *config.Config
	logger    *zap.Logger
	postgres  *persistence.Postgres
	dashboard *service.DashboardService
	close     func()
}

// openEnvironment connects to the configured store. Changes are announced on
// the Redis change channel so running API instances drop their snapshots.
func openEnvironment(ctx context.Context) (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if pg.Configured() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), persistence.DefaultMigrationsDir, logger); err != nil {
			pg.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	var collections repository.CollectionStore
	if cfg.Store.Backend == config.StoreBackendPostgres {
		collections = repository.NewPostgresCollectionStore(pg.PoolHandle())
	} else if collections, err = repository.NewFileCollectionStore(cfg.Store.Dir); err != nil {
		pg.Close()
		return nil, err
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	dispatcher := events.NewInMemoryDispatcher()
	if client := redis.ClientHandle(); client != nil {
		bridge := events.NewRedisBridge(client, cfg.Redis.ChangeChannel, dispatcher, logger)
		dispatcher.SubscribeAll(bridge.Forward)
	}

	dashboard := service.NewDashboardService(service.DashboardDependencies{
		Store:         repository.NewLeadStore(collections, logger),
		Cache:         service.NewSnapshotCache(redis.ClientHandle(), cfg.Dashboard.CacheTTL()),
		Dispatcher:    dispatcher,
		Logger:        logger,
		ThresholdDays: cfg.Dashboard.DelayThresholdDays,
		Location:      cfg.Dashboard.Location(),
	})

	return &environment{
		cfg:       cfg,
		logger:    logger,
		postgres:  pg,
		dashboard: dashboard,
		close: func() {
			redis.Close()
			pg.Close()
			_ = logger.Sync()
		},
	}, nil
}
