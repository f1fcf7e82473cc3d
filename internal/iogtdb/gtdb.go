// Package iogtdb downloads Genome Taxonomy Database releases and turns
// their metadata and reference trees into taxon records.
package iogtdb

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gnclade/internal/iodownload"
	"github.com/gnames/gnclade/pkg/newick"
	"github.com/gnames/gnclade/pkg/schema"
	"github.com/gnames/gnclade/pkg/store"
	"github.com/gnames/gnclade/pkg/taxon"
	"github.com/gnames/gnclade/pkg/tree"
)

// Dataset identifiers in stores.
const (
	DatasetTaxonomy = "gtdb"
	DatasetTreeAr   = "gtdb-tree-ar"
	DatasetTreeBac  = "gtdb-tree-bac"
)

// Datasets lists all GTDB dataset identifiers.
var Datasets = []string{DatasetTaxonomy, DatasetTreeAr, DatasetTreeBac}

// RankGenome is the rank of accession leaves.
const RankGenome = "genome"

var ranks = map[string]string{
	"d__": "domain",
	"p__": "phylum",
	"c__": "class",
	"o__": "order",
	"f__": "family",
	"g__": "genus",
	"s__": "species",
}

// Rank returns the rank encoded by a GTDB prefix such as "g__".
func Rank(name string) string {
	if len(name) < 3 {
		return ""
	}
	return ranks[name[:3]]
}

// Download fetches files into dir and unpacks compressed ones. It returns
// local paths of the extracted files.
func Download(
	ctx context.Context,
	dl *iodownload.Downloader,
	files Files,
	dir string,
) (Files, error) {
	var res Files
	for _, url := range files.All() {
		path := filepath.Join(dir, iodownload.FileName(url))
		slog.Info("Downloading GTDB file", "url", url)
		if err := dl.File(ctx, url, path); err != nil {
			return res, err
		}
		paths, err := iodownload.Extract(path)
		if err != nil {
			return res, err
		}
		for _, p := range paths {
			res.classify(filepath.Base(p), p)
		}
	}
	if m := res.missing(); len(m) > 0 {
		return res, MissingFilesError(dir, m)
	}
	return res, nil
}

// LocalFiles finds extracted data files in dir.
func LocalFiles(dir string) (Files, error) {
	var res Files
	entries, err := os.ReadDir(dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return res, err
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasSuffix(name, ".gz") {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		res.classify(name, filepath.Join(dir, name))
	}
	if m := res.missing(); len(m) > 0 {
		return res, MissingFilesError(dir, m)
	}
	return res, nil
}

// lineage accumulates a synthetic tree from GTDB taxonomy strings.
type lineage struct {
	recs     []taxon.Record
	ids      map[string]uint64
	distance float64
}

func newLineage(distance float64) *lineage {
	res := &lineage{ids: make(map[string]uint64), distance: distance}
	res.add("root", "no rank", 0, "")
	return res
}

// add appends a record. Zero parent makes a root.
func (l *lineage) add(name, rank string, parent uint64, extID string) uint64 {
	id := uint64(len(l.recs) + 1)
	if parent == 0 {
		parent = id
	}
	l.recs = append(l.recs, taxon.Record{
		ID:       id,
		ParentID: parent,
		Name:     name,
		Rank:     rank,
		Distance: l.distance,
		ExtID:    extID,
	})
	return id
}

// genome adds the taxa of a lineage if they are new and the genome
// itself as a leaf. A taxon name seen before keeps its first parent.
func (l *lineage) genome(accession, gtdbTaxonomy, ncbiTaxID string) {
	parent := uint64(1)
	for _, name := range strings.Split(gtdbTaxonomy, ";") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		id, ok := l.ids[name]
		if !ok {
			id = l.add(name, Rank(name), parent, "")
			l.ids[name] = id
		}
		parent = id
	}
	l.add(accession, RankGenome, parent, ncbiTaxID)
}

// ParseMetadata reads ar/bac metadata TSV files and returns a tree
// root → domain → ... → species → genome accession. Genome leaves keep
// the NCBI taxon ID as ExtID.
func ParseMetadata(
	ctx context.Context,
	defaultDistance float64,
	paths ...string,
) ([]taxon.Record, error) {
	l := newLineage(defaultDistance)
	for _, path := range paths {
		if err := l.readMetadata(ctx, path); err != nil {
			return nil, err
		}
	}
	return l.recs, nil
}

func (l *lineage) readMetadata(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	file := filepath.Base(path)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	if !sc.Scan() {
		return ParseError(file, 1, errors.New("empty file"))
	}
	header := strings.Split(sc.Text(), "\t")
	col := func(name string) int {
		return slices.Index(header, name)
	}
	accIdx, taxIdx, ncbiIdx := col("accession"), col("gtdb_taxonomy"), col("ncbi_taxid")
	if accIdx < 0 || taxIdx < 0 {
		return ParseError(file, 1,
			errors.New("columns 'accession' and 'gtdb_taxonomy' are required"))
	}

	var count int
	line := 1
	for sc.Scan() {
		line++
		if line%50_000 == 0 && ctx.Err() != nil {
			return ctx.Err()
		}
		fields := strings.Split(sc.Text(), "\t")
		if len(fields) <= max(accIdx, taxIdx) {
			if strings.TrimSpace(sc.Text()) == "" {
				continue
			}
			return ParseError(file, line,
				fmt.Errorf("got %d fields", len(fields)))
		}
		var taxID string
		if ncbiIdx >= 0 && ncbiIdx < len(fields) {
			if _, err = strconv.ParseUint(fields[ncbiIdx], 10, 64); err == nil {
				taxID = fields[ncbiIdx]
			}
		}
		l.genome(fields[accIdx], fields[taxIdx], taxID)
		count++
	}
	if err = sc.Err(); err != nil {
		return ParseError(file, line, err)
	}
	slog.Info("Parsed GTDB metadata", "file", file,
		"genomes", humanize.Comma(int64(count)))
	return nil
}

// TreeLabel splits a GTDB tree label into a name, a rank and a branch
// support value. Internal labels look like "100.0:g__Foo" or
// "95.2:d__Bacteria; p__Bar", the most specific taxon becomes the name.
// Labels with only support values give empty names. Other labels are
// genome accessions.
func TreeLabel(label string) (string, string, float64) {
	if label == "" {
		return "", "", 0
	}
	var support float64
	if sup, taxa, ok := strings.Cut(label, ":"); ok {
		support, _ = strconv.ParseFloat(strings.TrimSpace(sup), 64)
		label = taxa
	} else if f, err := strconv.ParseFloat(label, 64); err == nil {
		return "", "", f
	}
	parts := strings.Split(label, ";")
	name := strings.TrimSpace(parts[len(parts)-1])
	if rank := Rank(name); rank != "" {
		return name, rank, support
	}
	return name, RankGenome, support
}

// ParseTree reads a GTDB reference tree in Newick format.
func ParseTree(path string, defaultDistance float64) ([]taxon.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	trees, err := newick.NewReader(bufio.NewReader(f)).ReadAll()
	if err != nil {
		return nil, err
	}
	res := newick.Flatten(trees, defaultDistance, TreeLabel)
	slog.Info("Parsed GTDB tree", "file", filepath.Base(path),
		"nodes", humanize.Comma(int64(len(res))))
	return res, nil
}

// Import parses local files of a version and saves three datasets:
// the taxonomy built from metadata and both reference trees.
func Import(
	ctx context.Context,
	st store.Store,
	files Files,
	version, url string,
	defaultDistance float64,
) error {
	recs, err := ParseMetadata(ctx, defaultDistance,
		files.ArMetadata, files.BacMetadata)
	if err != nil {
		return err
	}
	if err = save(ctx, st, DatasetTaxonomy, version, url, recs); err != nil {
		return err
	}

	trees := []struct{ id, path string }{
		{DatasetTreeAr, files.ArTree},
		{DatasetTreeBac, files.BacTree},
	}
	for _, v := range trees {
		recs, err = ParseTree(v.path, defaultDistance)
		if err != nil {
			return err
		}
		if err = save(ctx, st, v.id, version, url, recs); err != nil {
			return err
		}
	}
	return nil
}

// save validates records as a tree before storing them.
func save(
	ctx context.Context,
	st store.Store,
	id, version, url string,
	recs []taxon.Record,
) error {
	tbl, err := taxon.New(recs)
	if err != nil {
		return err
	}
	if _, err = tree.Build(tbl); err != nil {
		return err
	}
	ds := schema.Dataset{
		ID:        id,
		Version:   version,
		DataURL:   url,
		UpdatedAt: time.Now(),
	}
	return st.SaveDataset(ctx, ds, recs)
}
