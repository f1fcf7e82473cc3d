package ioncbi

import (
	"fmt"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/gnclade/pkg/errcode"
)

// ParseError is returned when a dump file has an unexpected line.
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

// MissingFilesError is returned when dump files are not downloaded yet.
func MissingFilesError(dir string, files []string) error {
	msg := `Files <em>%s</em> are missing in <em>%s</em>

Run <em>gnclade ncbi update</em> first.`
	vars := []any{strings.Join(files, ", "), dir}
	return &gn.Error{
		Code: errcode.SourceMissingFilesError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("missing %v in %s", files, dir),
	}
}
