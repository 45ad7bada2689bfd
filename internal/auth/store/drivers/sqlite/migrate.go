package sqlite

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/aussiebroadwan/candor/internal/auth/store/drivers/sqlite/migrations"
)

// migrationsTable records the applied schema version.
const migrationsTable = "candor_schema_migrations"

func (m *Store) migrator() (*migrate.Migrate, error) {
	driver, err := migratesqlite.WithInstance(m.db, &migratesqlite.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return nil, fmt.Errorf("migration driver: %w", err)
	}

	src, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return nil, fmt.Errorf("migration source: %w", err)
	}

	return migrate.NewWithInstance("iofs", src, "candor", driver)
}

// ApplyMigrations brings the schema up to date from the migration files
// embedded in the binary. Running it on an up to date database is a no-op.
func (m *Store) ApplyMigrations() error {
	mg, err := m.migrator()
	if err != nil {
		return err
	}

	if err := mg.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// SchemaVersion reports the applied migration version. A database that was
// never migrated reports 0.
func (m *Store) SchemaVersion() (uint, error) {
	mg, err := m.migrator()
	if err != nil {
		return 0, err
	}

	version, dirty, err := mg.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return 0, nil
	case err != nil:
		return 0, err
	case dirty:
		return version, fmt.Errorf("schema version %d is dirty", version)
	}
	return version, nil
}
