package ioschema

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnclade/pkg/errcode"
)

// NotConnectedError creates an error for when schema
// operation is attempted without database connection.
func NotConnectedError() error {
	msg := "Schema operation attempted without database connection"

	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Err:  fmt.Errorf("not connected to database"),
	}
}

// GORMConnectionError creates an error for GORM
// connection failures.
func GORMConnectionError(err error) error {
	msg := `Cannot connect to database with GORM

Ensure the database operator is connected and check the
<em>database</em> section of the configuration.`

	return &gn.Error{
		Code: errcode.DBConnectionError,
		Msg:  msg,
		Err:  fmt.Errorf("failed to connect with GORM: %w", err),
	}
}

// SchemaError creates an error for failed creation or migration of
// the schema.
func SchemaError(op string, err error) error {
	msg := "Cannot %s database schema"
	vars := []any{op}
	return &gn.Error{
		Code: errcode.DBSchemaError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot %s schema: %w", op, err),
	}
}

// CollationError creates an error for collation setting
// failures.
func CollationError(table, column string, err error) error {
	msg := "Cannot set collation for <em>%s.%s</em>"
	vars := []any{table, column}
	return &gn.Error{
		Code: errcode.DBSchemaError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("cannot set collation on %s.%s: %w",
			table, column, err),
	}
}
