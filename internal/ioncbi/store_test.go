package ioncbi_test

import (
	"context"

	"github.com/gnames/gnclade/pkg/schema"
	"github.com/gnames/gnclade/pkg/taxon"
)

// memStore keeps the last saved dataset.
type memStore struct {
	id, version string
	recs        []taxon.Record
}

func (m *memStore) Init(context.Context) error { return nil }

func (m *memStore) SaveDataset(
	_ context.Context, ds schema.Dataset, recs []taxon.Record,
) error {
	m.id, m.version, m.recs = ds.ID, ds.Version, recs
	return nil
}

func (m *memStore) LoadDataset(
	context.Context, string, string,
) (schema.Dataset, []taxon.Record, error) {
	return schema.Dataset{ID: m.id, Version: m.version}, m.recs, nil
}

func (m *memStore) Datasets(context.Context) ([]schema.Dataset, error) {
	return []schema.Dataset{{ID: m.id, Version: m.version}}, nil
}

func (m *memStore) Close() error { return nil }
