package iosqlite

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gnclade/pkg/errcode"
)

// OpenError is returned when the SQLite file cannot be opened.
func OpenError(path string, err error) error {
	msg := "Cannot open SQLite database <em>%s</em>"
	vars := []any{path}
	return &gn.Error{
		Code: errcode.DBConnectionError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot open sqlite %s: %w", path, err),
	}
}

// SchemaError is returned when tables cannot be created.
func SchemaError(err error) error {
	return &gn.Error{
		Code: errcode.DBSchemaError,
		Msg:  "Cannot create SQLite schema",
		Err:  fmt.Errorf("cannot create sqlite schema: %w", err),
	}
}

// SaveDatasetError is returned when records cannot be stored.
func SaveDatasetError(id, version string, err error) error {
	msg := "Cannot save dataset <em>%s</em> version <em>%s</em>"
	vars := []any{id, version}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DBSaveError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: save %s/%s: %w", fn.Name(), id, version, err),
	}
}

// LoadError is returned when a query fails.
func LoadError(what string, err error) error {
	msg := "Cannot load <em>%s</em> from SQLite"
	vars := []any{what}
	return &gn.Error{
		Code: errcode.DBLoadError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot load %s: %w", what, err),
	}
}

// DatasetNotFoundError is returned when a requested dataset is absent.
func DatasetNotFoundError(id, version string) error {
	msg := `Dataset <em>%s</em> (version '%s') is not imported yet

Run <em>gnclade ncbi update</em> or <em>gnclade gtdb sync</em> first.`
	vars := []any{id, version}
	return &gn.Error{
		Code: errcode.DBDatasetNotFoundError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("dataset %s version '%s' not found", id, version),
	}
}
