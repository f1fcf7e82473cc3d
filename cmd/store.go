package cmd

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/gnames/gnclade/internal/iocache"
	"github.com/gnames/gnclade/internal/iodb"
	"github.com/gnames/gnclade/internal/ioschema"
	"github.com/gnames/gnclade/internal/iosqlite"
	"github.com/gnames/gnclade/pkg/config"
	"github.com/gnames/gnclade/pkg/store"
)

// openStore opens the configured backend, creates tables if needed and
// puts the snapshot cache in front of it.
func openStore(ctx context.Context) (store.Store, error) {
	var st store.Store
	var err error

	switch cfg.Store.Backend {
	case "postgres":
		op := iodb.NewPgxOperator()
		if err = op.Connect(ctx, &cfg.Database); err != nil {
			return nil, err
		}
		st = iodb.NewStore(op, ioschema.NewManager(op), cfg.Database.BatchSize)
	default:
		path := config.SQLitePath(cfg.HomeDir)
		st, err = iosqlite.Open(path, cfg.Database.BatchSize)
		if err != nil {
			return nil, err
		}
	}

	if err = st.Init(ctx); err != nil {
		st.Close()
		return nil, err
	}

	cache, err := iocache.New(filepath.Join(config.CacheDir(cfg.HomeDir), "snapshots"))
	if err == nil {
		err = cache.Open()
	}
	if err != nil {
		slog.Warn("Snapshot cache is disabled", "error", err)
		return st, nil
	}
	return iocache.Wrap(st, cache), nil
}
