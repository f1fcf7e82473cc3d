package iodownload

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Gunzip decompresses a .gz file next to it, removes the archive and
// returns the path of the result.
func Gunzip(path string) (string, error) {
	out := strings.TrimSuffix(path, ".gz")
	if out == path {
		return "", ExtractError(path, errors.New("not a .gz file"))
	}

	f, err := os.Open(path)
	if err != nil {
		return "", ExtractError(path, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return "", ExtractError(path, err)
	}
	defer gz.Close()

	w, err := os.Create(out)
	if err != nil {
		return "", ExtractError(path, err)
	}
	if _, err = io.Copy(w, gz); err != nil {
		w.Close()
		return "", ExtractError(path, err)
	}
	if err = w.Close(); err != nil {
		return "", ExtractError(path, err)
	}
	f.Close()
	if err = os.Remove(path); err != nil {
		return "", ExtractError(path, err)
	}
	return out, nil
}

// Untar extracts regular files from a .tar.gz archive into dir. If keep
// is not nil, only files with base names it accepts are written. Paths
// inside the archive are flattened to their base name. It returns the
// paths of written files.
func Untar(path, dir string, keep func(name string) bool) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ExtractError(path, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, ExtractError(path, err)
	}
	defer gz.Close()

	var res []string
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, ExtractError(path, err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		name := filepath.Base(hdr.Name)
		if keep != nil && !keep(name) {
			continue
		}
		out := filepath.Join(dir, name)
		if err = writeFile(out, tr); err != nil {
			return nil, ExtractError(path, err)
		}
		res = append(res, out)
	}
	return res, nil
}

func writeFile(path string, r io.Reader) error {
	w, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err = io.Copy(w, r); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// Extract unpacks path according to its extension: .tar.gz and .tgz
// are untarred into the directory of the archive, .gz is decompressed.
// Other files are left as they are. The archive is removed after
// extraction.
func Extract(path string) ([]string, error) {
	switch {
	case strings.HasSuffix(path, ".tar.gz"), strings.HasSuffix(path, ".tgz"):
		res, err := Untar(path, filepath.Dir(path), nil)
		if err != nil {
			return nil, err
		}
		if err = os.Remove(path); err != nil {
			return nil, ExtractError(path, err)
		}
		return res, nil
	case strings.HasSuffix(path, ".gz"):
		out, err := Gunzip(path)
		if err != nil {
			return nil, err
		}
		return []string{out}, nil
	default:
		return []string{path}, nil
	}
}
