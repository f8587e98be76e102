// Command rebuild-summary folds the work records of a month back into its
// monthly summary. With -company it rebuilds one bucket. Without it, every
// company that has records in the month is rebuilt.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	v1 "github.com/logistics-lab/palletbook/internal/api/v1"
	"github.com/logistics-lab/palletbook/internal/aggregation"
	corecfg "github.com/logistics-lab/palletbook/internal/core/config"
	"github.com/logistics-lab/palletbook/internal/core/storage"
	"github.com/logistics-lab/palletbook/internal/core/storage/postgres"
	"github.com/logistics-lab/palletbook/internal/migrations"
	"github.com/logistics-lab/palletbook/pkg/logger"
)

type options struct {
	CompanyID string
	Year      int
	Month     int
	// OnlyDrifted leaves documents that already match their records untouched.
	OnlyDrifted bool
}

type rebuildStore interface {
	storage.Transactor
	storage.BucketLister
}

func main() {
	now := time.Now().UTC()
	configPath := flag.String("config", "palletbook.yaml", "Path to configuration file")
	company := flag.String("company", "", "Company id; empty rebuilds every company with records in the month")
	year := flag.Int("year", now.Year(), "Year of the bucket")
	month := flag.Int("month", int(now.Month()), "Month of the bucket (1-12)")
	onlyDrifted := flag.Bool("only-drifted", false, "Only rewrite documents that disagree with their records")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := corecfg.LoadDotEnv(); err != nil {
		logger.Fatal(ctx, "Failed to load .env", "error", err)
	}
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		logger.Fatal(ctx, "Failed to load config", "error", err)
	}
	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Development: cfg.Log.Development})
	if err != nil {
		logger.Fatal(ctx, "Failed to build logger", "error", err)
	}
	logger.SetDefault(log.WithComponent("rebuild-summary"))
	defer log.Sync() //nolint:errcheck

	if cfg.Database.Type != "postgres" {
		logger.Fatal(ctx, "rebuild-summary needs database.type postgres", "type", cfg.Database.Type)
	}

	db, err := postgres.Open(cfg.Database.DSN, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	if err != nil {
		logger.Fatal(ctx, "Failed to open database", "error", err)
	}
	if err := migrations.RunMigrations(db, cfg.Database.AutoMigrate); err != nil {
		logger.Fatal(ctx, "Failed to run migrations", "error", err)
	}
	adapter, err := postgres.NewAdapter(db, postgres.TxOptions{
		Isolation:    cfg.Transaction.IsolationLevel(),
		MaxRetries:   cfg.Transaction.MaxRetries,
		RetryBackoff: cfg.Transaction.Backoff(),
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize store", "error", err)
	}
	defer adapter.Close()

	results, err := run(ctx, adapter, options{
		CompanyID:   *company,
		Year:        *year,
		Month:       *month,
		OnlyDrifted: *onlyDrifted,
	}, now)
	for _, res := range results {
		logger.Info(ctx, "Bucket rebuilt",
			"bucket", res.Bucket.Key(),
			"records", res.Records,
			"drifted", res.Drifted,
			"written", res.Written)
	}
	if err != nil {
		logger.Error(ctx, "Rebuild failed", "error", err)
		os.Exit(1)
	}
	logger.Info(ctx, "Rebuild complete", "buckets", len(results))
}

// run rebuilds each selected bucket in its own transaction and keeps going
// after a failure. The returned error joins every bucket failure.
func run(ctx context.Context, store rebuildStore, opts options, now time.Time) ([]aggregation.RebuildResult, error) {
	if opts.Month < 1 || opts.Month > 12 {
		return nil, fmt.Errorf("month %d out of range", opts.Month)
	}

	buckets, err := selectBuckets(ctx, store, opts)
	if err != nil {
		return nil, err
	}

	var (
		results []aggregation.RebuildResult
		errs    []error
	)
	for _, b := range buckets {
		var res aggregation.RebuildResult
		err := store.RunInTransaction(ctx, func(ctx context.Context, tx storage.Tx) error {
			var err error
			res, err = aggregation.RebuildBucket(ctx, tx, b, now, !opts.OnlyDrifted)
			return err
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("rebuild %s: %w", b.Key(), err))
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

func selectBuckets(ctx context.Context, store storage.BucketLister, opts options) ([]storage.Bucket, error) {
	if opts.CompanyID != "" {
		return []storage.Bucket{{CompanyID: opts.CompanyID, Year: opts.Year, Month: opts.Month}}, nil
	}

	first := v1.Date{Year: opts.Year, Month: time.Month(opts.Month), Day: 1}
	last := v1.DateOf(first.Time().AddDate(0, 1, -1))
	buckets, err := store.ListBuckets(ctx, first, last)
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}
	return buckets, nil
}
