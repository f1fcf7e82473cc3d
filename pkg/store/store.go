// Package store defines contracts for persistence of parsed taxonomies.
// Implementations live in internal/iosqlite (modernc SQLite) and
// internal/iodb (PostgreSQL).
package store

import (
	"context"

	"github.com/gnames/gnclade/pkg/schema"
	"github.com/gnames/gnclade/pkg/taxon"
)

// Store keeps taxonomic datasets. Every dataset is identified by its
// source ID and version.
type Store interface {
	// Init creates tables if they do not exist yet. It is idempotent.
	Init(ctx context.Context) error

	// SaveDataset replaces the dataset with the same ID and version by
	// the given records. Records are stored in their order.
	SaveDataset(ctx context.Context, ds schema.Dataset, recs []taxon.Record) error

	// LoadDataset returns metadata and records of a dataset. Empty
	// version selects the most recently updated one.
	LoadDataset(ctx context.Context, id, version string) (schema.Dataset, []taxon.Record, error)

	// Datasets lists metadata of all stored datasets.
	Datasets(ctx context.Context) ([]schema.Dataset, error)

	// Close releases resources.
	Close() error
}

// SchemaManager creates and updates the PostgreSQL schema.
// Schema management is idempotent - safe to run multiple times.
type SchemaManager interface {
	// Create creates tables using GORM AutoMigrate and applies "C"
	// collation to name columns.
	Create(ctx context.Context) error

	// Migrate updates the schema to the latest version.
	Migrate(ctx context.Context) error
}
