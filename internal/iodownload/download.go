// Package iodownload fetches source files over HTTP and unpacks gzip
// and tar archives.
package iodownload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cheggaaa/pb/v3"
)

// ETagFile keeps the entity tag of the last downloaded archive.
const ETagFile = "etag.txt"

// Downloader performs HTTP requests with retries.
type Downloader struct {
	client   *http.Client
	attempts int
	backoff  time.Duration
	progress bool
}

// Option configures Downloader.
type Option func(*Downloader)

// OptAttempts sets the number of download attempts.
func OptAttempts(n int) Option {
	return func(d *Downloader) {
		if n > 0 {
			d.attempts = n
		}
	}
}

// OptBackoff sets the pause between attempts.
func OptBackoff(dur time.Duration) Option {
	return func(d *Downloader) {
		d.backoff = dur
	}
}

// OptProgress shows a progress bar on STDERR during downloads.
func OptProgress(b bool) Option {
	return func(d *Downloader) {
		d.progress = b
	}
}

// OptClient replaces the default HTTP client.
func OptClient(c *http.Client) Option {
	return func(d *Downloader) {
		d.client = c
	}
}

// New creates a Downloader. By default it makes three attempts.
func New(opts ...Option) *Downloader {
	res := &Downloader{
		client:   &http.Client{Timeout: 30 * time.Minute},
		attempts: 3,
		backoff:  2 * time.Second,
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// ETag returns the entity tag of a remote file using a HEAD request.
// Empty string means the server does not provide one.
func (d *Downloader) ETag(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return "", DownloadError(url, 1, err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return "", DownloadError(url, 1, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", DownloadError(url, 1,
			&StatusError{URL: url, Status: resp.StatusCode})
	}
	return resp.Header.Get("ETag"), nil
}

// Page returns the body of a small text resource such as an HTML index.
func (d *Downloader) Page(ctx context.Context, url string) (string, error) {
	var res string
	err := d.retry(ctx, url, func() error {
		body, err := d.get(ctx, url)
		if err != nil {
			return err
		}
		defer body.Close()
		bs, err := io.ReadAll(body)
		if err != nil {
			return err
		}
		res = string(bs)
		return nil
	})
	return res, err
}

// File downloads url into path. A partial file is removed on failure.
func (d *Downloader) File(ctx context.Context, url, path string) error {
	return d.retry(ctx, url, func() error {
		err := d.save(ctx, url, path)
		if err != nil {
			os.Remove(path)
		}
		return err
	})
}

func (d *Downloader) save(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &StatusError{URL: url, Status: resp.StatusCode}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var r io.Reader = resp.Body
	if d.progress {
		bar := pb.Full.Start64(resp.ContentLength)
		bar.Set("prefix", filepath.Base(path)+" ")
		bar.Set(pb.Bytes, true)
		bar.Set(pb.CleanOnFinish, true)
		defer bar.Finish()
		r = bar.NewProxyReader(resp.Body)
	}

	if _, err = io.Copy(f, r); err != nil {
		return err
	}
	return f.Close()
}

func (d *Downloader) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &StatusError{URL: url, Status: resp.StatusCode}
	}
	return resp.Body, nil
}

// retry runs fn until it succeeds or attempts are exhausted. Client
// errors (4xx) are not retried.
func (d *Downloader) retry(ctx context.Context, url string, fn func() error) error {
	var err error
	var i int
	for i = 1; i <= d.attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		var se *StatusError
		if errors.As(err, &se) && se.Status >= 400 && se.Status < 500 {
			break
		}
		if ctx.Err() != nil {
			break
		}
		if i < d.attempts {
			slog.Warn("Download attempt failed, retrying",
				"url", url, "attempt", i, "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(d.backoff):
			}
		}
	}
	return DownloadError(url, min(i, d.attempts), err)
}

// LocalETag reads the stored entity tag from dir. Missing file gives
// an empty string.
func LocalETag(dir string) string {
	bs, err := os.ReadFile(filepath.Join(dir, ETagFile))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(bs))
}

// SaveETag stores the entity tag in dir.
func SaveETag(dir, etag string) error {
	path := filepath.Join(dir, ETagFile)
	err := os.WriteFile(path, []byte(etag), 0644)
	if err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return nil
}

// FileName returns the last path element of a URL.
func FileName(url string) string {
	url, _, _ = strings.Cut(url, "?")
	return url[strings.LastIndex(url, "/")+1:]
}
