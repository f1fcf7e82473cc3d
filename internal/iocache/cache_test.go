package iocache_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/gnames/gn"
	"github.com/gnames/gnclade/internal/iocache"
	"github.com/gnames/gnclade/internal/iotesting"
	"github.com/gnames/gnclade/pkg/errcode"
	"github.com/gnames/gnclade/pkg/schema"
	"github.com/gnames/gnclade/pkg/taxon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openCache(t *testing.T) *iocache.Cache {
	t.Helper()
	c, err := iocache.New(filepath.Join(t.TempDir(), "snapshots"))
	require.NoError(t, err)
	require.NoError(t, c.Open())
	t.Cleanup(func() { c.Close() })
	return c
}

func TestPutGet(t *testing.T) {
	c := openCache(t)
	recs := iotesting.Records()
	ds := schema.Dataset{
		ID: "ncbi", Version: "latest", RecordCount: len(recs),
		UpdatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	_, _, ok, err := c.Get("ncbi", "latest")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put(ds, recs))
	got, res, ok, err := c.Get("ncbi", "latest")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, ds.UpdatedAt.Equal(got.UpdatedAt))
	assert.Equal(t, recs, res)

	require.NoError(t, c.Delete("ncbi", "latest"))
	_, _, ok, err = c.Get("ncbi", "latest")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNotOpen(t *testing.T) {
	c, err := iocache.New(t.TempDir())
	require.NoError(t, err)

	err = c.Put(schema.Dataset{ID: "ncbi"}, nil)
	var gnErr *gn.Error
	require.True(t, errors.As(err, &gnErr))
	assert.Equal(t, errcode.CacheNotOpenError, gnErr.Code)
	assert.NoError(t, c.Close())
}

func TestCleanup(t *testing.T) {
	c := openCache(t)
	require.NoError(t, c.Put(schema.Dataset{ID: "a", Version: "1"}, nil))
	require.NoError(t, c.Cleanup())

	require.NoError(t, c.Open())
	_, _, ok, err := c.Get("a", "1")
	require.NoError(t, err)
	assert.False(t, ok)
}

// memStore is a minimal in-memory store counting record loads.
type memStore struct {
	data  map[string]schema.Dataset
	recs  map[string][]taxon.Record
	loads int
}

func newMemStore() *memStore {
	return &memStore{
		data: make(map[string]schema.Dataset),
		recs: make(map[string][]taxon.Record),
	}
}

func (m *memStore) Init(context.Context) error { return nil }

func (m *memStore) SaveDataset(
	_ context.Context, ds schema.Dataset, recs []taxon.Record,
) error {
	ds.RecordCount = len(recs)
	k := iocache.Key(ds.ID, ds.Version)
	m.data[k] = ds
	m.recs[k] = recs
	return nil
}

func (m *memStore) LoadDataset(
	_ context.Context, id, version string,
) (schema.Dataset, []taxon.Record, error) {
	m.loads++
	k := iocache.Key(id, version)
	ds, ok := m.data[k]
	if !ok {
		return ds, nil, errors.New("not found")
	}
	return ds, m.recs[k], nil
}

func (m *memStore) Datasets(context.Context) ([]schema.Dataset, error) {
	var res []schema.Dataset
	for _, v := range m.data {
		res = append(res, v)
	}
	return res, nil
}

func (m *memStore) Close() error { return nil }

func TestWrap(t *testing.T) {
	ctx := context.Background()
	mem := newMemStore()
	st := iocache.Wrap(mem, openCache(t))
	recs := iotesting.Records()
	ds := schema.Dataset{ID: "ncbi", Version: "latest", UpdatedAt: time.Now()}

	require.NoError(t, st.SaveDataset(ctx, ds, recs))

	_, res, err := st.LoadDataset(ctx, "ncbi", "latest")
	require.NoError(t, err)
	assert.Equal(t, recs, res)
	assert.Equal(t, 1, mem.loads)

	// second load is served from the snapshot
	_, res, err = st.LoadDataset(ctx, "ncbi", "")
	require.NoError(t, err)
	assert.Equal(t, recs, res)
	assert.Equal(t, 1, mem.loads)

	// a new import invalidates the snapshot
	ds.UpdatedAt = ds.UpdatedAt.Add(time.Minute)
	require.NoError(t, st.SaveDataset(ctx, ds, recs[:2]))
	_, res, err = st.LoadDataset(ctx, "ncbi", "latest")
	require.NoError(t, err)
	assert.Len(t, res, 2)
	assert.Equal(t, 2, mem.loads)

	_, _, err = st.LoadDataset(ctx, "gtdb", "")
	assert.Error(t, err)
}
