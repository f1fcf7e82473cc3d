package iologger

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnclade/pkg/errcode"
)

// LogFileError is returned when the log file cannot be opened. Setting
// log.destination to stderr avoids the file.
func LogFileError(path string, append bool, err error) error {
	msg := "Cannot open log file <em>%s</em>, " +
		"set <em>log.destination</em> to stderr to log without a file"
	vars := []any{path}
	mode := "truncate"
	if append {
		mode = "append"
	}
	return &gn.Error{
		Code: errcode.LogFileError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("open log %s (%s): %w", path, mode, err),
	}
}
