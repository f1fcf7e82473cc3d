package iofs

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gnclade/pkg/errcode"
)

// CreateDirError is returned when a GNclade data, cache, config or output
// directory cannot be created.
func CreateDirError(dir string, err error) error {
	msg := "Cannot create directory <em>%s</em>"
	vars := []any{dir}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.CreateDirError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: mkdir %s: %w", fn.Name(), dir, err),
	}
}

// ConfigFileError is returned when the default config.yaml cannot be
// written to the config directory.
func ConfigFileError(path string, err error) error {
	msg := "Cannot create default settings in <em>%s</em>"
	vars := []any{path}
	return &gn.Error{
		Code: errcode.ConfigFileError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("write default config %s: %w", path, err),
	}
}

// TokensReadError is returned when a file with taxon IDs, names or
// accessions given by --input cannot be read. Line is 0 when the file
// cannot be opened.
func TokensReadError(path string, line int, err error) error {
	msg := "Cannot read taxa list <em>%s</em>"
	vars := []any{path}
	if line > 0 {
		msg = "Cannot read taxa list <em>%s</em> at line %d"
		vars = append(vars, line)
	}
	return &gn.Error{
		Code: errcode.TokensReadError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("taxa list %s, line %d: %w", path, line, err),
	}
}

// NewickWriteError is returned when a pruned tree cannot be written.
func NewickWriteError(path string, err error) error {
	if path == "" || path == "-" {
		path = "STDOUT"
	}
	msg := "Cannot write Newick tree to <em>%s</em>"
	vars := []any{path}
	return &gn.Error{
		Code: errcode.NewickWriteError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("write newick to %s: %w", path, err),
	}
}
