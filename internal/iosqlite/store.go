// Package iosqlite implements store.Store on top of a SQLite file using
// the pure Go modernc.org/sqlite driver.
package iosqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gnclade/pkg/schema"
	"github.com/gnames/gnclade/pkg/store"
	"github.com/gnames/gnclade/pkg/taxon"
	_ "modernc.org/sqlite"
)

type sqliteStore struct {
	db        *sql.DB
	batchSize int
}

// Open opens (or creates) a SQLite store at path.
func Open(path string, batchSize int) (store.Store, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, OpenError(path, err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, OpenError(path, err)
	}
	// SQLite allows one writer, a single connection avoids lock errors.
	db.SetMaxOpenConns(1)
	return NewWithDB(db, batchSize), nil
}

// NewWithDB creates a store that uses an already opened database.
func NewWithDB(db *sql.DB, batchSize int) store.Store {
	if batchSize <= 0 {
		batchSize = 50_000
	}
	return &sqliteStore{db: db, batchSize: batchSize}
}

// Init creates tables and indices.
func (s *sqliteStore) Init(ctx context.Context) error {
	for _, q := range schema.AllDDL() {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return SchemaError(err)
		}
	}
	return nil
}

// SaveDataset replaces a dataset version in one transaction.
func (s *sqliteStore) SaveDataset(
	ctx context.Context,
	ds schema.Dataset,
	recs []taxon.Record,
) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SaveDatasetError(ds.ID, ds.Version, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"DELETE FROM taxa WHERE dataset_id = ? AND version = ?",
		ds.ID, ds.Version)
	if err != nil {
		return SaveDatasetError(ds.ID, ds.Version, err)
	}
	_, err = tx.ExecContext(ctx,
		"DELETE FROM datasets WHERE id = ? AND version = ?",
		ds.ID, ds.Version)
	if err != nil {
		return SaveDatasetError(ds.ID, ds.Version, err)
	}

	ds.RecordCount = len(recs)
	if ds.UpdatedAt.IsZero() {
		ds.UpdatedAt = time.Now()
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO datasets
			(id, version, etag, data_url, record_count, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ds.ID, ds.Version, ds.ETag, ds.DataURL, ds.RecordCount,
		ds.UpdatedAt.UTC())
	if err != nil {
		return SaveDatasetError(ds.ID, ds.Version, err)
	}

	if err = s.insertTaxa(ctx, tx, ds, recs); err != nil {
		return SaveDatasetError(ds.ID, ds.Version, err)
	}

	if err = tx.Commit(); err != nil {
		return SaveDatasetError(ds.ID, ds.Version, err)
	}

	slog.Info("Saved dataset to SQLite",
		"dataset", ds.ID, "version", ds.Version,
		"records", humanize.Comma(int64(len(recs))))
	return nil
}

// insertTaxa writes records with multi-row inserts of batchSize rows
// at most. SQLite limits the number of bound parameters, so a batch is
// capped accordingly.
func (s *sqliteStore) insertTaxa(
	ctx context.Context,
	tx *sql.Tx,
	ds schema.Dataset,
	recs []taxon.Record,
) error {
	cols := schema.Columns(schema.Taxon{})
	batch := min(s.batchSize, 32_766/len(cols))

	for i := 0; i < len(recs); i += batch {
		end := min(i+batch, len(recs))
		n := end - i

		row := "(" + strings.TrimSuffix(strings.Repeat("?,", len(cols)), ",") + ")"
		q := fmt.Sprintf("INSERT INTO taxa (%s) VALUES %s",
			strings.Join(cols, ", "),
			strings.TrimSuffix(strings.Repeat(row+",", n), ","),
		)

		args := make([]any, 0, n*len(cols))
		for j, r := range recs[i:end] {
			t := schema.NewTaxon(ds.ID, ds.Version, i+j, r)
			args = append(args,
				t.DatasetID, t.Version, t.Position, t.TaxonID, t.ParentID,
				t.Name, t.NameID.String(), t.Rank, t.Distance, t.ExtID,
				t.Support,
			)
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

// LoadDataset reads records of a dataset in their original order.
func (s *sqliteStore) LoadDataset(
	ctx context.Context,
	id, version string,
) (schema.Dataset, []taxon.Record, error) {
	var ds schema.Dataset
	q := `SELECT id, version, etag, data_url, record_count, updated_at
		FROM datasets WHERE id = ? AND (? = '' OR version = ?)
		ORDER BY updated_at DESC LIMIT 1`
	err := s.db.QueryRowContext(ctx, q, id, version, version).Scan(
		&ds.ID, &ds.Version, &ds.ETag, &ds.DataURL,
		&ds.RecordCount, &ds.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return ds, nil, DatasetNotFoundError(id, version)
	}
	if err != nil {
		return ds, nil, LoadError("dataset", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT taxon_id, parent_id, name, rank, distance, ext_id, support
		FROM taxa WHERE dataset_id = ? AND version = ?
		ORDER BY position`, ds.ID, ds.Version)
	if err != nil {
		return ds, nil, LoadError("taxa", err)
	}
	defer rows.Close()

	res := make([]taxon.Record, 0, ds.RecordCount)
	for rows.Next() {
		var t schema.Taxon
		err = rows.Scan(
			&t.TaxonID, &t.ParentID, &t.Name, &t.Rank, &t.Distance, &t.ExtID,
			&t.Support,
		)
		if err != nil {
			return ds, nil, LoadError("taxa", err)
		}
		res = append(res, t.Record())
	}
	if err = rows.Err(); err != nil {
		return ds, nil, LoadError("taxa", err)
	}
	return ds, res, nil
}

// Datasets lists stored datasets, newest first.
func (s *sqliteStore) Datasets(ctx context.Context) ([]schema.Dataset, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, version, etag, data_url, record_count, updated_at
		FROM datasets ORDER BY updated_at DESC`)
	if err != nil {
		return nil, LoadError("datasets", err)
	}
	defer rows.Close()

	var res []schema.Dataset
	for rows.Next() {
		var ds schema.Dataset
		err = rows.Scan(
			&ds.ID, &ds.Version, &ds.ETag, &ds.DataURL,
			&ds.RecordCount, &ds.UpdatedAt,
		)
		if err != nil {
			return nil, LoadError("datasets", err)
		}
		res = append(res, ds)
	}
	if err = rows.Err(); err != nil {
		return nil, LoadError("datasets", err)
	}
	return res, nil
}

// Close closes the database.
func (s *sqliteStore) Close() error {
	return s.db.Close()
}
