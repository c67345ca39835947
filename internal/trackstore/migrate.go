package trackstore

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/ghrelinlab/posemetrics/internal/contract"
	"github.com/ghrelinlab/posemetrics/schema"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate runs database migrations for the trial schema.
// - If targetVersion < 0, it migrates to the latest version.
// - If targetVersion == 0, it rolls back all migrations.
// - If targetVersion > 0, it migrates to the specified version.
func Migrate(ctx context.Context, cfg *contract.Config, targetVersion int) error {
	if cfg.Backend == schema.NoneBackend {
		return fmt.Errorf("migrations are not supported for the none backend")
	}

	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	var driver database.Driver
	switch store.backend {
	case schema.SQLiteBackend:
		driver, err = sqlite.WithInstance(store.db, &sqlite.Config{})
	case schema.MySQLBackend:
		driver, err = mysql.WithInstance(store.db, &mysql.Config{})
	case schema.PostgreSQLBackend:
		driver, err = postgres.WithInstance(store.db, &postgres.Config{})
	}
	if err != nil {
		return fmt.Errorf("failed to create %s migrate driver: %w", store.backend, err)
	}

	migrationFS, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to access migrations directory: %w", err)
	}
	sourceDriver, err := iofs.New(migrationFS, ".")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "posemetrics", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	currentVersion, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}
	if dirty {
		return fmt.Errorf("database is in a dirty state at version %d. Please fix manually or force version", currentVersion)
	}

	switch {
	case targetVersion < 0:
		err = m.Up()
	case targetVersion == 0:
		err = m.Down()
	default:
		err = m.Migrate(uint(targetVersion))
	}
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
