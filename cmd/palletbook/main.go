package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/logistics-lab/palletbook/internal/aggregation"
	"github.com/logistics-lab/palletbook/internal/catalog"
	corecfg "github.com/logistics-lab/palletbook/internal/core/config"
	"github.com/logistics-lab/palletbook/internal/core/storage"
	"github.com/logistics-lab/palletbook/internal/core/storage/memory"
	"github.com/logistics-lab/palletbook/internal/core/storage/postgres"
	"github.com/logistics-lab/palletbook/internal/core/validation"
	"github.com/logistics-lab/palletbook/internal/ingestion"
	"github.com/logistics-lab/palletbook/internal/metrics"
	"github.com/logistics-lab/palletbook/internal/migrations"
	"github.com/logistics-lab/palletbook/internal/projection"
	"github.com/logistics-lab/palletbook/internal/server"
	"github.com/logistics-lab/palletbook/pkg/logger"
)

func main() {
	configPath := flag.String("config", "palletbook.yaml", "Path to configuration file")
	flag.Parse()

	ctx := context.Background()

	// 0. Load .env and configuration
	if err := corecfg.LoadDotEnv(); err != nil {
		logger.Fatal(ctx, "Failed to load .env", "error", err)
	}
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		logger.Fatal(ctx, "Failed to load config", "error", err)
	}

	// 1. Initialize Logger
	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Development: cfg.Log.Development})
	if err != nil {
		logger.Fatal(ctx, "Failed to build logger", "error", err)
	}
	logger.SetDefault(log)
	defer log.Sync() //nolint:errcheck

	logger.Info(ctx, "Loaded config",
		"database", cfg.Database.Type,
		"isolation", cfg.Transaction.Isolation,
		"item_sum_policy", cfg.Validation.ItemSumPolicy,
		"reconcile", cfg.Reconcile.Enabled)

	m := metrics.New()

	// 2. Initialize Storage
	store, err := openStore(cfg, m)
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize store", "error", err)
	}
	defer store.Close()

	// 3. Load Catalog
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		logger.Fatal(ctx, "Failed to load catalog", "path", cfg.Catalog.Path, "error", err)
	}
	var resolver ingestion.DistributorResolver
	if cat.Len() > 0 || cfg.Catalog.Required {
		resolver = cat
	}
	logger.Info(ctx, "Catalog loaded", "path", cat.Path(), "entries", cat.Len(), "enforced", resolver != nil)

	// 4. Initialize Validation
	val, err := validation.New(validation.Options{
		ItemSumPolicy:          cfg.Validation.ItemSumPolicy,
		RequirePositivePallets: cfg.Validation.RequirePositivePallets,
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to build validator", "error", err)
	}

	// 5. Initialize Ingestion (Consistency Coordinator)
	ingestionSvc := ingestion.NewService(store, val, ingestion.Options{
		Resolver:      resolver,
		Observer:      m,
		MaxBodySizeMB: cfg.Server.MaxBodySizeMB,
	})

	// 6. Initialize Projection (Query Surface)
	projectionSvc := projection.NewService(store, store)

	// 7. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), cfg.Server.Mode, store, m.Handler())
	srv.Mount(ingestionSvc, projectionSvc, catalog.NewHandler(cat))

	// 8. Start Services
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.Reconcile.Enabled {
		scheduler := aggregation.NewScheduler(
			cfg.Reconcile.EveryInterval(),
			store,
			aggregation.JobParameter{
				WorkerCount: cfg.Reconcile.WorkerCount,
				MonthsBack:  cfg.Reconcile.MonthsBack,
			},
			m,
		)
		go func() {
			if err := scheduler.Start(ctx); err != nil {
				logger.Error(ctx, "Reconcile scheduler stopped with error", "error", err)
			}
		}()
	} else {
		logger.Info(ctx, "Reconcile scheduler disabled by config")
	}

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		logger.Error(ctx, "Server stopped with error", "error", err)
	}

	logger.Info(context.Background(), "Shutdown complete")
}

// openStore returns the configured storage backend. Postgres runs migrations
// before the adapter checks the schema.
func openStore(cfg *corecfg.Config, m *metrics.Metrics) (storage.Store, error) {
	if cfg.Database.Type == "memory" {
		logger.Warn(context.Background(), "Using in-memory store, data is lost on exit")
		return memory.NewStore(), nil
	}

	db, err := postgres.Open(cfg.Database.DSN, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	if err != nil {
		return nil, err
	}
	if err := migrations.RunMigrations(db, cfg.Database.AutoMigrate); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	adapter, err := postgres.NewAdapter(db, postgres.TxOptions{
		Isolation:    cfg.Transaction.IsolationLevel(),
		MaxRetries:   cfg.Transaction.MaxRetries,
		RetryBackoff: cfg.Transaction.Backoff(),
		OnRetry:      m.TxRetry,
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return adapter, nil
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
