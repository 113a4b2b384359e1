// Package dbtest connects tests to a disposable Postgres database. Tests are
// skipped unless TEST_DATABASE_URL is set.
package dbtest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

const EnvDatabaseURL = "TEST_DATABASE_URL"

var tables = []string{
	"holder_positions",
	"instrument_positions",
	"positions",
	"role_grants",
	"holders",
	"addresses",
	"instruments",
}

// SetupTestDB migrates the database to the latest schema, empties every
// table and returns a pool that is closed when the test ends.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv(EnvDatabaseURL)
	if dsn == "" {
		t.Skipf("%s not set, skipping Postgres test", EnvDatabaseURL)
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		t.Fatalf("Failed to parse database config: %v", err)
	}
	config.MaxConns = 5
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		t.Fatalf("Failed to create connection pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := pool.Ping(context.Background()); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	migrate(t, pool)
	TruncateTables(t, pool)
	return pool
}

func migrate(t *testing.T, pool *pgxpool.Pool) {
	root, err := getServiceRoot()
	if err != nil {
		t.Fatalf("Failed to get service root path: %v", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		t.Fatalf("Failed to set goose dialect: %v", err)
	}
	if err := goose.Up(db, filepath.Join(root, "migrations")); err != nil {
		t.Fatalf("Failed to apply migrations: %v", err)
	}
}

// getServiceRoot walks up from the working directory to the go.mod.
func getServiceRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(wd, "go.mod")); err == nil {
			return wd, nil
		}
		parent := filepath.Dir(wd)
		if parent == wd {
			return "", fmt.Errorf("go.mod not found in any parent directory")
		}
		wd = parent
	}
}

// TruncateTables empties every table and restarts the id sequences.
func TruncateTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	for _, table := range tables {
		_, err := pool.Exec(context.Background(), fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table))
		if err != nil {
			t.Fatalf("Failed to truncate table %s: %v", table, err)
		}
	}
}
