// Package pgtest provisions a migrated PostgreSQL database per test for store tests
// that must run against the real database. Tests skip when no server is configured.
package pgtest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/JaimeStill/inspector/cmd/migrate/migrations"
)

// EnvDatabaseURL names the connection string of a server where the test role may
// create and drop databases.
const EnvDatabaseURL = "INSPECTOR_TEST_DATABASE_URL"

// Open creates a fresh database, applies every migration, and returns a connection to
// it. The database is dropped when the test finishes.
func Open(t testing.TB) *sql.DB {
	t.Helper()

	dsn := os.Getenv(EnvDatabaseURL)
	if dsn == "" {
		t.Skipf("%s not set", EnvDatabaseURL)
	}

	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		t.Fatalf("parse %s: %v", EnvDatabaseURL, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	name := "inspector_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	admin := stdlib.OpenDB(*cfg)
	if _, err := admin.ExecContext(ctx, "CREATE DATABASE "+name); err != nil {
		admin.Close()
		t.Fatalf("create database: %v", err)
	}
	t.Cleanup(func() {
		defer admin.Close()
		if _, err := admin.Exec("DROP DATABASE IF EXISTS " + name + " WITH (FORCE)"); err != nil {
			t.Logf("drop database %s: %v", name, err)
		}
	})

	scoped := cfg.Copy()
	scoped.Database = name

	if err := migrateUp(stdlib.OpenDB(*scoped)); err != nil {
		t.Fatalf("migrate %s: %v", name, err)
	}

	db := stdlib.OpenDB(*scoped)
	t.Cleanup(func() { db.Close() })

	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	return db
}

// migrateUp applies every migration through db and closes it.
func migrateUp(db *sql.DB) error {
	src, err := migrations.Source()
	if err != nil {
		db.Close()
		return err
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		db.Close()
		return fmt.Errorf("driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		db.Close()
		return fmt.Errorf("migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
