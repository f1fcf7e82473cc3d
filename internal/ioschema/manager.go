// Package ioschema implements store.SchemaManager interface for
// PostgreSQL schema management. This is an impure I/O package
// that wraps GORM AutoMigrate functionality.
package ioschema

import (
	"context"
	"log/slog"

	"github.com/gnames/gnclade/pkg/db"
	"github.com/gnames/gnclade/pkg/schema"
	"github.com/gnames/gnclade/pkg/store"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// manager implements the store.SchemaManager interface
// using GORM AutoMigrate.
type manager struct {
	operator db.Operator
}

// NewManager creates a new SchemaManager.
func NewManager(op db.Operator) store.SchemaManager {
	return &manager{operator: op}
}

// Create creates the schema using GORM AutoMigrate and applies "C"
// collation to taxon names, so names sort and compare bytewise as they
// do in memory.
func (m *manager) Create(ctx context.Context) error {
	if err := m.migrate("create"); err != nil {
		return err
	}
	return m.setCollation(ctx)
}

// Migrate updates the schema to the latest version.
func (m *manager) Migrate(ctx context.Context) error {
	return m.migrate("migrate")
}

func (m *manager) migrate(op string) error {
	pool := m.operator.Pool()
	if pool == nil {
		return NotConnectedError()
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{Conn: sqlDB}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		return GORMConnectionError(err)
	}

	if err := schema.Migrate(gormDB); err != nil {
		return SchemaError(op, err)
	}
	slog.Info("Database schema is ready", "operation", op)
	return nil
}

func (m *manager) setCollation(ctx context.Context) error {
	pool := m.operator.Pool()
	if pool == nil {
		return NotConnectedError()
	}

	columns := []struct{ table, column string }{
		{"taxa", "name"},
	}
	for _, col := range columns {
		if _, err := pool.Exec(ctx, collationSQL(col.table, col.column)); err != nil {
			return CollationError(col.table, col.column, err)
		}
	}
	return nil
}
