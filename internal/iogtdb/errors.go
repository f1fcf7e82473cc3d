package iogtdb

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnclade/pkg/errcode"
)

// ReleaseNotFoundError is returned when a requested GTDB version is not
// in the release index.
func ReleaseNotFoundError(version string) error {
	msg := `GTDB release <em>%s</em> not found

Run <em>gnclade gtdb list</em> to see available versions.`
	vars := []any{version}
	return &gn.Error{
		Code: errcode.SourceReleaseNotFoundError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("gtdb release '%s' not found", version),
	}
}

// ParseError is returned when a GTDB file cannot be parsed.
func ParseError(file string, line int, err error) error {
	msg := "Cannot parse <em>%s</em> at line %d"
	vars := []any{file, line}
	return &gn.Error{
		Code: errcode.SourceParseError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("parse %s line %d: %w", file, line, err),
	}
}

// MissingFilesError is returned when downloaded files are incomplete.
func MissingFilesError(dir string, missing []string) error {
	msg := `GTDB files <em>%v</em> are missing in <em>%s</em>

Run <em>gnclade gtdb download</em> first.`
	vars := []any{missing, dir}
	return &gn.Error{
		Code: errcode.SourceMissingFilesError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("missing %v in %s", missing, dir),
	}
}
