package iodownload

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnclade/pkg/errcode"
)

// DownloadError is returned when a URL cannot be fetched.
func DownloadError(url string, attempts int, err error) error {
	msg := `Cannot download <em>%s</em> after %d attempt(s)

Check your internet connection and the source URL in
  <em>~/.config/gnclade/config.yaml</em>`
	vars := []any{url, attempts}
	return &gn.Error{
		Code: errcode.SourceDownloadError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("download %s: %w", url, err),
	}
}

// ExtractError is returned when an archive cannot be unpacked.
func ExtractError(path string, err error) error {
	msg := "Cannot extract archive <em>%s</em>"
	vars := []any{path}
	return &gn.Error{
		Code: errcode.SourceExtractError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("extract %s: %w", path, err),
	}
}

// StatusError describes an unexpected HTTP response.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Status, e.URL)
}
