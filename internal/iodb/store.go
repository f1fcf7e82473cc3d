package iodb

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gnclade/pkg/db"
	"github.com/gnames/gnclade/pkg/schema"
	"github.com/gnames/gnclade/pkg/store"
	"github.com/gnames/gnclade/pkg/taxon"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type pgStore struct {
	op        db.Operator
	sm        store.SchemaManager
	batchSize int
}

// NewStore creates a PostgreSQL store on top of a connected operator.
// Schema is created by the given schema manager.
func NewStore(op db.Operator, sm store.SchemaManager, batchSize int) store.Store {
	if batchSize <= 0 {
		batchSize = 50_000
	}
	return &pgStore{op: op, sm: sm, batchSize: batchSize}
}

// Init creates tables with GORM AutoMigrate.
func (s *pgStore) Init(ctx context.Context) error {
	if s.op.Pool() == nil {
		return NotConnectedError()
	}
	return s.sm.Create(ctx)
}

// SaveDataset replaces a dataset version in one transaction.
func (s *pgStore) SaveDataset(
	ctx context.Context,
	ds schema.Dataset,
	recs []taxon.Record,
) error {
	pool := s.op.Pool()
	if pool == nil {
		return NotConnectedError()
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return SaveDatasetError(ds.ID, ds.Version, err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		"DELETE FROM taxa WHERE dataset_id = $1 AND version = $2",
		ds.ID, ds.Version)
	if err != nil {
		return SaveDatasetError(ds.ID, ds.Version, err)
	}
	_, err = tx.Exec(ctx,
		"DELETE FROM datasets WHERE id = $1 AND version = $2",
		ds.ID, ds.Version)
	if err != nil {
		return SaveDatasetError(ds.ID, ds.Version, err)
	}

	ds.RecordCount = len(recs)
	if ds.UpdatedAt.IsZero() {
		ds.UpdatedAt = time.Now()
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO datasets
			(id, version, etag, data_url, record_count, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		ds.ID, ds.Version, ds.ETag, ds.DataURL, ds.RecordCount, ds.UpdatedAt)
	if err != nil {
		return SaveDatasetError(ds.ID, ds.Version, err)
	}

	columns := schema.Columns(schema.Taxon{})
	var total int64
	for i := 0; i < len(recs); i += s.batchSize {
		end := min(i+s.batchSize, len(recs))
		batch := recs[i:end]

		rows := make([][]any, len(batch))
		for j, r := range batch {
			t := schema.NewTaxon(ds.ID, ds.Version, i+j, r)
			rows[j] = []any{
				t.DatasetID,
				t.Version,
				t.Position,
				t.TaxonID,
				t.ParentID,
				t.Name,
				pgtype.UUID{Bytes: t.NameID, Valid: true},
				t.Rank,
				t.Distance,
				t.ExtID,
				t.Support,
			}
		}

		count, err := tx.CopyFrom(
			ctx,
			pgx.Identifier{"taxa"},
			columns,
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return SaveDatasetError(ds.ID, ds.Version, err)
		}
		total += count
	}

	if err = tx.Commit(ctx); err != nil {
		return SaveDatasetError(ds.ID, ds.Version, err)
	}

	slog.Info("Saved dataset to PostgreSQL",
		"dataset", ds.ID, "version", ds.Version,
		"records", humanize.Comma(total))
	return nil
}

// LoadDataset reads records of a dataset in their original order.
func (s *pgStore) LoadDataset(
	ctx context.Context,
	id, version string,
) (schema.Dataset, []taxon.Record, error) {
	var ds schema.Dataset
	pool := s.op.Pool()
	if pool == nil {
		return ds, nil, NotConnectedError()
	}

	q := `SELECT id, version, etag, data_url, record_count, updated_at
		FROM datasets WHERE id = $1 AND ($2 = '' OR version = $2)
		ORDER BY updated_at DESC LIMIT 1`
	err := pool.QueryRow(ctx, q, id, version).Scan(
		&ds.ID, &ds.Version, &ds.ETag, &ds.DataURL,
		&ds.RecordCount, &ds.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return ds, nil, DatasetNotFoundError(id, version)
	}
	if err != nil {
		return ds, nil, QueryError("load dataset", err)
	}

	rows, err := pool.Query(ctx,
		`SELECT taxon_id, parent_id, name, rank, distance, ext_id, support
		FROM taxa WHERE dataset_id = $1 AND version = $2
		ORDER BY position`, ds.ID, ds.Version)
	if err != nil {
		return ds, nil, QueryError("load taxa", err)
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
			return ds, nil, QueryError("load taxa", err)
		}
		res = append(res, t.Record())
	}
	if err = rows.Err(); err != nil {
		return ds, nil, QueryError("load taxa", err)
	}

	return ds, res, nil
}

// Datasets lists stored datasets, newest first.
func (s *pgStore) Datasets(ctx context.Context) ([]schema.Dataset, error) {
	pool := s.op.Pool()
	if pool == nil {
		return nil, NotConnectedError()
	}

	rows, err := pool.Query(ctx,
		`SELECT id, version, etag, data_url, record_count, updated_at
		FROM datasets ORDER BY updated_at DESC`)
	if err != nil {
		return nil, QueryError("list datasets", err)
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
			return nil, QueryError("list datasets", err)
		}
		res = append(res, ds)
	}
	return res, rows.Err()
}

// Close closes the connection pool.
func (s *pgStore) Close() error {
	return s.op.Close()
}
