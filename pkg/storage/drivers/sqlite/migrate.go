package sqlite

import (
	"errors"
	"fmt"

	"github.com/aussiebroadwan/quill/pkg/storage/drivers/sqlite/migrations"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "modernc.org/sqlite"
)

// MigrationsTable keeps the session schema version apart from anything else
// sharing the database file.
const MigrationsTable = "quill_schema_migrations"

func (s *Store) migrator() (*migrate.Migrate, error) {
	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{MigrationsTable: MigrationsTable})
	if err != nil {
		return nil, fmt.Errorf("sqlite migration driver: %w", err)
	}

	source, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return nil, fmt.Errorf("embedded migrations: %w", err)
	}

	return migrate.NewWithInstance("iofs", source, "sqlite", driver)
}

// ApplyMigrations brings the schema up to the latest embedded version.
func (s *Store) ApplyMigrations() error {
	m, err := s.migrator()
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// SchemaVersion reports the applied migration version. Zero means none.
func (s *Store) SchemaVersion() (uint, error) {
	m, err := s.migrator()
	if err != nil {
		return 0, err
	}
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty", version)
	}
	return version, nil
}
