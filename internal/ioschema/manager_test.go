package ioschema

import (
	"context"
	"errors"
	"testing"

	"github.com/gnames/gn"
	"github.com/gnames/gnclade/internal/iodb"
	"github.com/gnames/gnclade/pkg/errcode"
	"github.com/gnames/gnclade/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerImplementsInterface(t *testing.T) {
	var _ store.SchemaManager = NewManager(iodb.NewPgxOperator())
}

func TestCollationSQL(t *testing.T) {
	assert.Equal(t,
		`ALTER TABLE taxa ALTER COLUMN name TYPE TEXT COLLATE "C"`,
		collationSQL("taxa", "name"),
	)
}

func TestNotConnected(t *testing.T) {
	m := NewManager(iodb.NewPgxOperator())
	for _, fn := range []func(context.Context) error{m.Create, m.Migrate} {
		err := fn(context.Background())
		require.Error(t, err)
		var gnErr *gn.Error
		require.True(t, errors.As(err, &gnErr))
		assert.Equal(t, errcode.DBNotConnectedError, gnErr.Code)
	}
}

func TestSchemaError(t *testing.T) {
	orig := errors.New("boom")
	err := SchemaError("create", orig)
	var gnErr *gn.Error
	require.True(t, errors.As(err, &gnErr))
	assert.Equal(t, errcode.DBSchemaError, gnErr.Code)
	assert.Equal(t, []any{"create"}, gnErr.Vars)
	assert.ErrorIs(t, gnErr.Err, orig)
}
