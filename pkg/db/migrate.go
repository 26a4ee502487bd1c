package db

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"carwash/pkg/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies pending migrations using DIRECT_URL when set.
func Migrate(cfg config.Config) error {
	return MigrateURL(cfg.MigrationsPath, migrationConnString(cfg))
}

// MigrateURL applies migrations from sourcePath ("embedded", "" or a golang-migrate
// source URL such as file://migrations) to the database at dbURL.
func MigrateURL(sourcePath, dbURL string) error {
	m, err := newMigrate(sourcePath, dbURL)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

func newMigrate(sourcePath, dbURL string) (*migrate.Migrate, error) {
	sourcePath = strings.TrimSpace(sourcePath)
	if sourcePath == "" || sourcePath == "embedded" {
		src, err := iofs.New(migrationsFS, "migrations")
		if err != nil {
			return nil, fmt.Errorf("embedded migrations: %w", err)
		}
		return migrate.NewWithSourceInstance("iofs", src, dbURL)
	}
	return migrate.New(sourcePath, dbURL)
}
