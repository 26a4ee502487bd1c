package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"carwash/pkg/config"
)

func TestRuntimeConnString_PrefersDatabaseURL(t *testing.T) {
	cfg := config.Config{
		DatabaseURL: "postgres://pooler/db?pgbouncer=true",
		DB:          config.DBConfig{Host: "h", Port: "5432", Name: "n", User: "u", Password: "p"},
	}
	if got := runtimeConnString(cfg); got != cfg.DatabaseURL {
		t.Fatalf("expected DATABASE_URL, got %q", got)
	}

	cfg.DatabaseURL = "  "
	want := "postgres://u:p@h:5432/n?sslmode=disable"
	if got := runtimeConnString(cfg); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestMigrationConnString_PrefersDirectURL(t *testing.T) {
	cfg := config.Config{DatabaseURL: "postgres://pooler/db", DirectURL: "postgres://direct/db"}
	if got := migrationConnString(cfg); got != "postgres://direct/db" {
		t.Fatalf("expected DIRECT_URL, got %q", got)
	}
	cfg.DirectURL = ""
	if got := migrationConnString(cfg); got != "postgres://pooler/db" {
		t.Fatalf("expected DATABASE_URL fallback, got %q", got)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	wrapped := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	if !IsUniqueViolation(wrapped) {
		t.Fatalf("expected unique violation")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatalf("foreign key violation is not a unique violation")
	}
	if IsUniqueViolation(errors.New("boom")) {
		t.Fatalf("plain error is not a unique violation")
	}
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	if len(entries) < 2 {
		t.Fatalf("expected up and down migrations, got %d files", len(entries))
	}
}
