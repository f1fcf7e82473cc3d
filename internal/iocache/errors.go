package iocache

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gnclade/pkg/errcode"
)

// OpenError is returned when the cache directory cannot be opened.
func OpenError(dir string, err error) error {
	msg := "Cannot open cache at <em>%s</em>"
	vars := []any{dir}
	return &gn.Error{
		Code: errcode.CacheOpenError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot open badger at %s: %w", dir, err),
	}
}

// NotOpenError is returned when the cache is used before Open.
func NotOpenError() error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.CacheNotOpenError,
		Msg:  "Cache is not open",
		Err:  fmt.Errorf("from %s: cache is not open", fn.Name()),
	}
}

// ReadError is returned when a snapshot cannot be read or decoded.
func ReadError(key string, err error) error {
	msg := "Cannot read snapshot <em>%s</em> from cache"
	vars := []any{key}
	return &gn.Error{
		Code: errcode.CacheReadError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot read %s: %w", key, err),
	}
}

// WriteError is returned when a snapshot cannot be stored.
func WriteError(key string, err error) error {
	msg := "Cannot write snapshot <em>%s</em> to cache"
	vars := []any{key}
	return &gn.Error{
		Code: errcode.CacheWriteError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot write %s: %w", key, err),
	}
}
