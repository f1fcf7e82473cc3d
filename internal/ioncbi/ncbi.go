// Package ioncbi downloads the NCBI taxonomy dump and converts it into
// taxon rows.
package ioncbi

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gnclade/internal/iodownload"
	"github.com/gnames/gnclade/pkg/schema"
	"github.com/gnames/gnclade/pkg/store"
	"github.com/gnames/gnclade/pkg/taxon"
	"github.com/gnames/gnclade/pkg/tree"
	"golang.org/x/sync/errgroup"
)

const (
	// DatasetID identifies NCBI data in stores.
	DatasetID = "ncbi"
	// Version is the only version of NCBI data kept in stores.
	Version = "latest"

	NamesFile   = "names.dmp"
	NodesFile   = "nodes.dmp"
	ArchiveFile = "taxdump.tar.gz"

	fieldSep = "\t|\t"
)

// Update downloads taxdump archive to dir unless the local copy has
// the same ETag as the remote one. It returns the remote ETag and true
// if new files were downloaded.
func Update(
	ctx context.Context,
	dl *iodownload.Downloader,
	url, dir string,
) (string, bool, error) {
	etag, err := dl.ETag(ctx, url)
	if err != nil {
		return "", false, err
	}

	if etag != "" && etag == iodownload.LocalETag(dir) && hasDump(dir) {
		slog.Info("NCBI taxdump is up to date", "etag", etag)
		return etag, false, nil
	}

	slog.Info("Downloading NCBI taxdump", "url", url)
	archive := filepath.Join(dir, ArchiveFile)
	if err = dl.File(ctx, url, archive); err != nil {
		return "", false, err
	}

	keep := func(name string) bool {
		return name == NamesFile || name == NodesFile
	}
	files, err := iodownload.Untar(archive, dir, keep)
	if err != nil {
		return "", false, err
	}
	if len(files) != 2 {
		return "", false, MissingFilesError(dir, []string{NamesFile, NodesFile})
	}
	if err = os.Remove(archive); err != nil {
		slog.Warn("Cannot remove archive", "path", archive, "error", err)
	}
	if err = iodownload.SaveETag(dir, etag); err != nil {
		return "", false, err
	}
	return etag, true, nil
}

func hasDump(dir string) bool {
	for _, f := range []string{NamesFile, NodesFile} {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			return false
		}
	}
	return true
}

// Rows reads nodes.dmp and names.dmp from dir. Rows follow the order of
// nodes.dmp, names come from 'scientific name' entries. Distance is left
// empty, so the table default distance is used.
func Rows(ctx context.Context, dir string) ([]taxon.Row, error) {
	var missing []string
	for _, f := range []string{NodesFile, NamesFile} {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, MissingFilesError(dir, missing)
	}

	var rows []taxon.Row
	var names map[string]string

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = readNodes(ctx, filepath.Join(dir, NodesFile))
		return err
	})
	g.Go(func() error {
		var err error
		names, err = readNames(ctx, filepath.Join(dir, NamesFile))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range rows {
		rows[i].Name = names[rows[i].ID]
	}
	slog.Info("Read NCBI taxdump", "taxa", humanize.Comma(int64(len(rows))))
	return rows, nil
}

func readNodes(ctx context.Context, path string) ([]taxon.Row, error) {
	var res []taxon.Row
	err := scan(ctx, path, func(n int, fields []string) error {
		if len(fields) < 3 {
			return ParseError(NodesFile, n,
				fmt.Errorf("expected at least 3 fields, got %d", len(fields)))
		}
		res = append(res, taxon.Row{
			ID:       fields[0],
			ParentID: fields[1],
			Rank:     fields[2],
		})
		return nil
	})
	return res, err
}

func readNames(ctx context.Context, path string) (map[string]string, error) {
	res := make(map[string]string)
	err := scan(ctx, path, func(n int, fields []string) error {
		if len(fields) < 4 {
			return ParseError(NamesFile, n,
				fmt.Errorf("expected 4 fields, got %d", len(fields)))
		}
		if fields[3] == "scientific name" {
			res[fields[0]] = fields[1]
		}
		return nil
	})
	return res, err
}

// scan calls fn with fields of every non-empty line of a dump file.
func scan(
	ctx context.Context,
	path string,
	fn func(lineNum int, fields []string) error,
) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var n int
	for sc.Scan() {
		n++
		if n%100_000 == 0 && ctx.Err() != nil {
			return ctx.Err()
		}
		line := strings.TrimSuffix(sc.Text(), "\t|")
		if line == "" {
			continue
		}
		if err = fn(n, strings.Split(line, fieldSep)); err != nil {
			return err
		}
	}
	if err = sc.Err(); err != nil {
		return ParseError(filepath.Base(path), n, err)
	}
	return nil
}

// Table reads dump files from dir and builds a validated taxon table.
func Table(ctx context.Context, dir string, opts ...taxon.Option) (*taxon.Table, error) {
	rows, err := Rows(ctx, dir)
	if err != nil {
		return nil, err
	}
	tbl, err := taxon.Load(rows, opts...)
	if err != nil {
		return nil, err
	}
	if _, err = tree.Build(tbl); err != nil {
		return nil, err
	}
	return tbl, nil
}

// Import parses dump files and saves them as the NCBI dataset.
func Import(
	ctx context.Context,
	st store.Store,
	dir, url, etag string,
	opts ...taxon.Option,
) (*taxon.Table, error) {
	tbl, err := Table(ctx, dir, opts...)
	if err != nil {
		return nil, err
	}
	ds := schema.Dataset{
		ID:        DatasetID,
		Version:   Version,
		ETag:      etag,
		DataURL:   url,
		UpdatedAt: time.Now(),
	}
	if err = st.SaveDataset(ctx, ds, tbl.Records()); err != nil {
		return nil, err
	}
	return tbl, nil
}

// Summary describes a table with its size and the first n records.
func Summary(tbl *taxon.Table, n int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Number of taxa: %s\n", humanize.Comma(int64(tbl.Len())))
	n = min(n, tbl.Len())
	if n <= 0 {
		return sb.String()
	}
	fmt.Fprintf(&sb, "First %d entries:\n", n)
	for i := range n {
		r := tbl.Record(i)
		fmt.Fprintf(&sb, "%d\tTaxID: %d\tParentID: %d\tName: %s\tRank: %s\tDistance: %g\n",
			i, r.ID, r.ParentID, r.Name, r.Rank, r.Distance)
	}
	return sb.String()
}
