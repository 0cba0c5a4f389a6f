// Package pgtest manages the lifecycle of the dedicated test database. It
// refuses to touch anything that is not unambiguously the test database, and
// hands every test a freshly migrated empty schema.
package pgtest

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gatherly/server/internal/config"
	"github.com/gatherly/server/internal/storage/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SentinelDB is the only database name this package will operate on.
const SentinelDB = "events_test_db"

// Guard rejects any configuration that does not target the dedicated test
// database. Both the environment name and the database name sentinel must
// match; a stray NODE_ENV or DATABASE_URL can therefore never point a test
// run at a real database.
func Guard(cfg config.Config) error {
	if cfg.Environment != "test" {
		return fmt.Errorf("pgtest: NODE_ENV is %q, want test", cfg.Environment)
	}
	if cfg.TestDB != SentinelDB {
		return fmt.Errorf("pgtest: TEST_DB is %q, want %s", cfg.TestDB, SentinelDB)
	}
	if cfg.DatabaseURL != "" {
		name, err := databaseName(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("pgtest: %w", err)
		}
		if name != SentinelDB {
			return fmt.Errorf("pgtest: DATABASE_URL targets %q, want %s", name, SentinelDB)
		}
	}
	return nil
}

func databaseName(databaseURL string) (string, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("parse database url: %w", err)
	}
	return strings.TrimPrefix(u.Path, "/"), nil
}

// Lifecycle wraps a group of tests so each one starts from an empty, freshly
// migrated schema.
type Lifecycle struct {
	URL  string
	Pool *pgxpool.Pool

	migrationsPath string
}

// New guards the configuration, connects a pool to the test database, and
// registers a cleanup that rolls all migrations back once the whole group is
// done. Any guard violation fails the test run immediately.
func New(t *testing.T, cfg config.Config, migrationsPath string) *Lifecycle {
	t.Helper()

	if err := Guard(cfg); err != nil {
		t.Fatalf("refusing to run against a non-test database: %v", err)
	}
	if migrationsPath == "" {
		migrationsPath = postgres.DefaultMigrationsPath
	}

	dbURL := cfg.ConnString()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect test database: %v", err)
	}

	lc := &Lifecycle{URL: dbURL, Pool: pool, migrationsPath: migrationsPath}
	t.Cleanup(func() {
		pool.Close()
		if err := postgres.MigrateDrop(dbURL, migrationsPath); err != nil {
			t.Errorf("roll back test database after group: %v", err)
		}
	})
	return lc
}

// Run executes fn as a subtest. All migrations are rolled back and
// re-applied before fn runs, and rolled back again afterwards.
func (l *Lifecycle) Run(t *testing.T, name string, fn func(t *testing.T, pool *pgxpool.Pool)) bool {
	return t.Run(name, func(t *testing.T) {
		if err := postgres.MigrateReset(l.URL, l.migrationsPath); err != nil {
			t.Fatalf("reset test database: %v", err)
		}
		defer func() {
			if err := postgres.MigrateDrop(l.URL, l.migrationsPath); err != nil {
				t.Errorf("roll back test database: %v", err)
			}
		}()
		fn(t, l.Pool)
	})
}
