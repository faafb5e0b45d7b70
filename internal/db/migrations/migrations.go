// Package migrations applies the versioned PostgreSQL schema embedded in the binary.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"ticket-selling/internal/logger"
)

//go:embed sql/*.sql
var files embed.FS

// Runner handles database migrations
type Runner struct {
	migrator *migrate.Migrate
	logger   *logger.Logger
}

// NewRunner binds the embedded migrations to an open PostgreSQL handle.
func NewRunner(db *sql.DB, log *logger.Logger) (*Runner, error) {
	source, err := iofs.New(files, "sql")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	return &Runner{migrator: migrator, logger: log}, nil
}

// Up applies every pending migration. A dirty version left by a failed run is
// forced clean first so the failed step is retried.
func (r *Runner) Up() error {
	version, dirty, err := r.migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	if dirty {
		previous := int(version) - 1
		if previous < 1 {
			previous = database.NilVersion
		}
		r.logger.Warn("MIGRATE", fmt.Sprintf("Detected dirty migration at version %d, forcing %d", version, previous))
		if err := r.migrator.Force(previous); err != nil {
			return fmt.Errorf("failed to fix dirty migration: %w", err)
		}
	}

	if err := r.migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return r.logVersion()
}

// Down rolls back all migrations
func (r *Runner) Down() error {
	if err := r.migrator.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration down failed: %w", err)
	}
	r.logger.Info("MIGRATE", "All migrations rolled back")
	return nil
}

// Version returns the applied schema version, 0 when nothing is applied.
func (r *Runner) Version() (uint, error) {
	version, _, err := r.migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, nil
}

func (r *Runner) logVersion() error {
	version, err := r.Version()
	if err != nil {
		return err
	}
	r.logger.Info("MIGRATE", fmt.Sprintf("Current schema version: %d", version))
	return nil
}

// Close frees resources associated with the migrator. The database handle
// passed to NewRunner is closed with it.
func (r *Runner) Close() error {
	sourceErr, databaseErr := r.migrator.Close()
	if sourceErr != nil {
		return fmt.Errorf("error closing migrator source: %w", sourceErr)
	}
	if databaseErr != nil {
		return fmt.Errorf("error closing migrator database: %w", databaseErr)
	}
	return nil
}
