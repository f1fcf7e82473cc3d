// Package iotesting provides shared test utilities for integration tests.
// This is an internal package for test infrastructure only.
package iotesting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gnames/gnclade/internal/ioconfig"
	"github.com/gnames/gnclade/pkg/config"
	"github.com/gnames/gnclade/pkg/taxon"
	"github.com/jackc/pgx/v5"
)

const (
	// TestDatabaseName is the database name used for all integration tests.
	// This ensures tests never accidentally run against production databases.
	TestDatabaseName = "gnclade_test"
)

// GetTestConfig returns a configuration suitable for integration tests.
// It loads the standard config (GNCLADE_* env vars, user's config.yaml,
// defaults) and overrides the database name to TestDatabaseName.
func GetTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.New()
	if home, err := os.UserHomeDir(); err == nil {
		if loaded, err := ioconfig.Load(home); err == nil {
			cfg.Update(loaded.ToOptions())
		}
	}
	cfg.Update([]config.Option{
		config.OptDatabaseDatabase(TestDatabaseName),
		config.OptHomeDir(t.TempDir()),
	})
	return cfg
}

// SkipWithoutPostgres skips a test in short mode or when the test
// database is unreachable.
func SkipWithoutPostgres(t *testing.T, cfg *config.DatabaseConfig) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, err := pgx.Connect(ctx, dsn(cfg))
	if err != nil {
		t.Skipf("PostgreSQL is not available: %v", err)
	}
	conn.Close(ctx)
}

func dsn(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode,
	)
}

// Records returns a small taxonomy:
//
//	root(1)
//	├── A(2)
//	│   └── C(4)
//	└── B(3)
func Records() []taxon.Record {
	return []taxon.Record{
		{ID: 1, ParentID: 1, Name: "root", Rank: "no rank", Distance: 1},
		{ID: 2, ParentID: 1, Name: "A", Rank: "genus", Distance: 1,
			Support: 95.5},
		{ID: 3, ParentID: 1, Name: "B", Rank: "genus", Distance: 1},
		{ID: 4, ParentID: 2, Name: "C", Rank: "species", Distance: 0.5,
			ExtID: "562"},
	}
}

// WriteFile writes content to a file in dir and returns its path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}
