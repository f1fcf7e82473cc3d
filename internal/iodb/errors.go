package iodb

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gnclade/pkg/errcode"
)

// ConnectionError is returned when database connection fails.
func ConnectionError(host string, port int, database, user string, err error) error {
	msg := `Could not connect to PostgreSQL database <em>%s</em>

Check if PostgreSQL is running:
  <em>pg_isready -h %s -p %d</em>

Review connection settings (user <em>%s</em>) in
  <em>~/.config/gnclade/config.yaml</em>`
	vars := []any{database, host, port, user}
	return &gn.Error{
		Code: errcode.DBConnectionError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("failed to connect to %s:%d/%s: %w",
			host, port, database, err),
	}
}

// NotConnectedError is returned when an operation needs a connection
// that was not established.
func NotConnectedError() error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  "Database is not connected",
		Err:  fmt.Errorf("from %s: database is not connected", fn.Name()),
	}
}

// QueryError is returned when a query fails.
func QueryError(query string, err error) error {
	msg := "Database query failed: <em>%s</em>"
	vars := []any{query}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DBLoadError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: query %s: %w", fn, query, err),
	}
}

// DropTableError is returned when a table cannot be dropped.
func DropTableError(table string, err error) error {
	msg := "Cannot drop table <em>%s</em>"
	vars := []any{table}
	return &gn.Error{
		Code: errcode.DBSchemaError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot drop table %s: %w", table, err),
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
		Err:  fmt.Errorf("from %s: save %s/%s: %w", fn, id, version, err),
	}
}

// DatasetNotFoundError is returned when a requested dataset is absent.
func DatasetNotFoundError(id, version string) error {
	msg := `Dataset <em>%s</em> (version '%s') is not in the database

Import it first, for example with <em>gnclade ncbi update</em> or
<em>gnclade gtdb sync</em>.`
	vars := []any{id, version}
	return &gn.Error{
		Code: errcode.DBDatasetNotFoundError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("dataset %s version '%s' not found", id, version),
	}
}
