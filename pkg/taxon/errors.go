package taxon

import (
	"errors"
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnclade/pkg/errcode"
)

var (
	errEmptyField       = errors.New("field is empty")
	errNegativeDistance = errors.New("distance must be a finite non-negative number")
	errNonFiniteSupport = errors.New("support must be a finite number")
)

// MalformedRowError is returned when a source row cannot be parsed.
// The row index is zero-based.
func MalformedRowError(rowIdx int, field, value string, err error) error {
	msg := "Malformed row <em>%d</em>: cannot parse %s <em>'%s'</em>"
	vars := []any{rowIdx, field, value}
	return &gn.Error{
		Code: errcode.TaxonMalformedRowError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("row %d: bad %s '%s': %w",
			rowIdx, field, value, err),
	}
}

// DuplicateIDError is returned when the same id appears twice.
func DuplicateIDError(id uint64, firstRow, secondRow int) error {
	msg := "Taxon ID <em>%d</em> is not unique (rows %d and %d)"
	vars := []any{id, firstRow, secondRow}
	return &gn.Error{
		Code: errcode.TaxonDuplicateIDError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("duplicate id %d in row %d (first seen in row %d)",
			id, secondRow, firstRow),
	}
}

// NotFoundError is returned when there is no record with the given id.
func NotFoundError(id uint64) error {
	msg := "Taxon ID <em>%d</em> not found"
	vars := []any{id}
	return &gn.Error{
		Code: errcode.TaxonNotFoundError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("id %d not found", id),
	}
}
