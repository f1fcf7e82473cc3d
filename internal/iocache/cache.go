// Package iocache keeps GOB-encoded snapshots of stored datasets in a
// Badger key-value store, so repeated prune runs do not need to query
// the database for all records.
package iocache

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/gnames/gnclade/pkg/schema"
	"github.com/gnames/gnclade/pkg/store"
	"github.com/gnames/gnclade/pkg/taxon"
	"github.com/gnames/gnfmt"
	"github.com/gnames/gnsys"
)

// snapshot is the cached value of a dataset.
type snapshot struct {
	Dataset schema.Dataset
	Records []taxon.Record
}

// Cache manages a Badger v4 database with dataset snapshots. It lives
// at ~/.cache/gnclade/snapshots and can be removed at any time.
type Cache struct {
	dir string
	db  *badger.DB
}

// New creates a cache at the given directory, creating it if needed.
func New(dir string) (*Cache, error) {
	err := gnsys.MakeDir(dir)
	if err != nil {
		slog.Error("Cannot create cache directory", "error", err, "dir", dir)
		return nil, OpenError(dir, err)
	}
	return &Cache{dir: dir}, nil
}

// Open opens the Badger database.
func (c *Cache) Open() error {
	if c.db != nil {
		slog.Warn("Cache database is already open")
		return nil
	}

	options := badger.DefaultOptions(c.dir)
	options.Logger = nil

	db, err := badger.Open(options)
	if err != nil {
		return OpenError(c.dir, err)
	}
	c.db = db
	slog.Debug("Cache database opened", "dir", c.dir)
	return nil
}

// Close closes the Badger database.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	if err != nil {
		slog.Error("Cannot close cache database", "error", err)
		return err
	}
	return nil
}

// Key returns the cache key of a dataset version.
func Key(id, version string) string {
	return id + "/" + version
}

// Put stores a dataset snapshot.
func (c *Cache) Put(ds schema.Dataset, recs []taxon.Record) error {
	if c.db == nil {
		return NotOpenError()
	}
	key := Key(ds.ID, ds.Version)

	enc := gnfmt.GNgob{}
	val, err := enc.Encode(snapshot{Dataset: ds, Records: recs})
	if err != nil {
		return WriteError(key, err)
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), val)
	})
	if err != nil {
		return WriteError(key, err)
	}
	return nil
}

// Get returns a snapshot. The boolean is false when the key is absent.
func (c *Cache) Get(id, version string) (schema.Dataset, []taxon.Record, bool, error) {
	var ds schema.Dataset
	if c.db == nil {
		return ds, nil, false, NotOpenError()
	}
	key := Key(id, version)

	var val []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return ds, nil, false, ReadError(key, err)
	}
	if val == nil {
		return ds, nil, false, nil
	}

	enc := gnfmt.GNgob{}
	var snap snapshot
	if err = enc.Decode(val, &snap); err != nil {
		return ds, nil, false, ReadError(key, err)
	}
	return snap.Dataset, snap.Records, true, nil
}

// Delete removes a snapshot, absent keys are ignored.
func (c *Cache) Delete(id, version string) error {
	if c.db == nil {
		return NotOpenError()
	}
	key := Key(id, version)
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return WriteError(key, err)
	}
	return nil
}

// Cleanup closes the database and removes all snapshots.
func (c *Cache) Cleanup() error {
	if err := c.Close(); err != nil {
		return err
	}
	err := gnsys.CleanDir(c.dir)
	if err != nil {
		slog.Error("Cannot remove cache directory", "error", err, "dir", c.dir)
		return err
	}
	slog.Info("Cache cleaned up", "dir", c.dir)
	return nil
}

// cachedStore serves LoadDataset from snapshots and falls back to the
// wrapped store.
type cachedStore struct {
	store.Store
	cache *Cache
}

// Wrap returns a store that reads datasets through the cache. A snapshot
// is used only if its UpdatedAt matches the stored dataset metadata.
// Closing the returned store closes the cache as well.
func Wrap(st store.Store, c *Cache) store.Store {
	return &cachedStore{Store: st, cache: c}
}

func (s *cachedStore) SaveDataset(
	ctx context.Context,
	ds schema.Dataset,
	recs []taxon.Record,
) error {
	err := s.Store.SaveDataset(ctx, ds, recs)
	if err != nil {
		return err
	}
	if err = s.cache.Delete(ds.ID, ds.Version); err != nil {
		slog.Warn("Cannot invalidate snapshot", "error", err)
	}
	return nil
}

func (s *cachedStore) LoadDataset(
	ctx context.Context,
	id, version string,
) (schema.Dataset, []taxon.Record, error) {
	meta, ok, err := s.lookup(ctx, id, version)
	if err != nil {
		return meta, nil, err
	}
	if ok {
		ds, recs, hit, err := s.cache.Get(meta.ID, meta.Version)
		if err != nil {
			slog.Warn("Cannot read snapshot", "error", err)
		}
		if hit && ds.UpdatedAt.Equal(meta.UpdatedAt) {
			slog.Debug("Dataset loaded from cache",
				"dataset", id, "version", ds.Version)
			return ds, recs, nil
		}
	}

	ds, recs, err := s.Store.LoadDataset(ctx, id, version)
	if err != nil {
		return ds, nil, err
	}
	if err = s.cache.Put(ds, recs); err != nil {
		slog.Warn("Cannot write snapshot", "error", err)
	}
	return ds, recs, nil
}

// lookup finds metadata of the requested dataset without loading records.
// Datasets are sorted newest first, so the first match is the latest one.
func (s *cachedStore) lookup(
	ctx context.Context,
	id, version string,
) (schema.Dataset, bool, error) {
	all, err := s.Store.Datasets(ctx)
	if err != nil {
		return schema.Dataset{}, false, err
	}
	for _, v := range all {
		if v.ID == id && (version == "" || v.Version == version) {
			return v, true, nil
		}
	}
	return schema.Dataset{}, false, nil
}

func (s *cachedStore) Close() error {
	err := s.cache.Close()
	if err2 := s.Store.Close(); err == nil {
		err = err2
	}
	return err
}
