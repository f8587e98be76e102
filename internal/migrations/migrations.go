package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/logistics-lab/palletbook/pkg/logger"
)

//go:embed *.sql
var MigrationFiles embed.FS

// RunMigrations applies pending migrations for work_records and monthly_summaries.
// If autoMigrate is false, it only reports the current version.
func RunMigrations(db *sql.DB, autoMigrate bool) error {
	ctx := context.Background()

	sourceDriver, err := iofs.New(MigrationFiles, ".")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	if dirty {
		logger.Warn(ctx, "[Migrations] Database is in dirty state, forcing back to last clean version",
			"version", version)

		// Every migration is idempotent (IF [NOT] EXISTS), so the interrupted one can re-run.
		clean := int(version) - 1
		if clean < 1 {
			clean = database.NilVersion
		}
		if err := m.Force(clean); err != nil {
			return fmt.Errorf("failed to recover dirty migration state at version %d: %w", version, err)
		}
		logger.Info(ctx, "[Migrations] Recovered dirty migration state", "forced_version", clean)
	}

	if !autoMigrate {
		logger.Info(ctx, "[Migrations] Auto-migration disabled, skipping",
			"current_version", version,
			"dirty", dirty)
		return nil
	}

	logger.Info(ctx, "[Migrations] Running database migrations", "current_version", version)

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info(ctx, "[Migrations] Database schema is up to date", "version", version)
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	newVersion, _, err := m.Version()
	if err != nil {
		return fmt.Errorf("failed to get updated migration version: %w", err)
	}

	logger.Info(ctx, "[Migrations] Database migrations completed",
		"from_version", version,
		"to_version", newVersion)
	return nil
}
