package iodownload_test

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/gnames/gn"
	"github.com/gnames/gnclade/internal/iodownload"
	"github.com/gnames/gnclade/pkg/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestETag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodHead, r.Method)
			w.Header().Set("ETag", `"abc-123"`)
		}))
	defer srv.Close()

	d := iodownload.New()
	etag, err := d.ETag(context.Background(), srv.URL+"/taxdump.tar.gz")
	require.NoError(t, err)
	assert.Equal(t, `"abc-123"`, etag)
}

func TestFileRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte("payload"))
		}))
	defer srv.Close()

	tests := []struct {
		msg      string
		attempts int
		err      bool
	}{
		{"not enough attempts", 2, true},
		{"succeeds on third", 3, false},
	}
	for _, v := range tests {
		calls.Store(0)
		path := filepath.Join(t.TempDir(), "out.txt")
		d := iodownload.New(
			iodownload.OptAttempts(v.attempts), iodownload.OptBackoff(0),
		)
		err := d.File(context.Background(), srv.URL, path)
		if v.err {
			assertCode(t, err, errcode.SourceDownloadError)
			assert.NoFileExists(t, path, v.msg)
			continue
		}
		require.NoError(t, err, v.msg)
		bs, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "payload", string(bs), v.msg)
	}
}

func TestNotFoundNoRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			http.NotFound(w, r)
		}))
	defer srv.Close()

	d := iodownload.New(iodownload.OptBackoff(0))
	_, err := d.Page(context.Background(), srv.URL)
	gnErr := assertCode(t, err, errcode.SourceDownloadError)
	assert.Equal(t, int32(1), calls.Load())
	assert.Contains(t, gnErr.Err.Error(), "status 404")
}

func TestLocalETag(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, "", iodownload.LocalETag(dir))
	require.NoError(t, iodownload.SaveETag(dir, "xyz"))
	assert.Equal(t, "xyz", iodownload.LocalETag(dir))
}

func TestFileName(t *testing.T) {
	tests := []struct{ url, name string }{
		{"https://a.org/pub/taxdump.tar.gz", "taxdump.tar.gz"},
		{"https://a.org/ar53.tree?x=1", "ar53.tree"},
		{"file.txt", "file.txt"},
	}
	for _, v := range tests {
		assert.Equal(t, v.name, iodownload.FileName(v.url))
	}
}

func TestGunzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ar53.tree.gz")
	require.NoError(t, os.WriteFile(path, gzipBytes(t, []byte("(A,B)R;")), 0644))

	res, err := iodownload.Extract(path)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "ar53.tree")}, res)
	assert.NoFileExists(t, path)
	bs, err := os.ReadFile(res[0])
	require.NoError(t, err)
	assert.Equal(t, "(A,B)R;", string(bs))

	_, err = iodownload.Gunzip(res[0])
	assertCode(t, err, errcode.SourceExtractError)
}

func TestUntar(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	files := map[string]string{
		"names.dmp":      "1\t|\troot\t|\n",
		"nodes.dmp":      "1\t|\t1\t|\tno rank\t|\n",
		"sub/merged.dmp": "",
	}
	for k, v := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name: k, Mode: 0644, Size: int64(len(v)), Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write([]byte(v))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())

	path := filepath.Join(dir, "taxdump.tar.gz")
	require.NoError(t, os.WriteFile(path, gzipBytes(t, buf.Bytes()), 0644))

	keep := func(name string) bool {
		return name == "names.dmp" || name == "nodes.dmp"
	}
	res, err := iodownload.Untar(path, dir, keep)
	require.NoError(t, err)
	assert.Len(t, res, 2)
	assert.FileExists(t, filepath.Join(dir, "nodes.dmp"))
	assert.NoFileExists(t, filepath.Join(dir, "merged.dmp"))
}

func gzipBytes(t *testing.T, bs []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write(bs)
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func assertCode(t *testing.T, err error, code gn.ErrorCode) *gn.Error {
	t.Helper()
	require.Error(t, err)
	var gnErr *gn.Error
	require.True(t, errors.As(err, &gnErr))
	assert.Equal(t, code, gnErr.Code)
	return gnErr
}
