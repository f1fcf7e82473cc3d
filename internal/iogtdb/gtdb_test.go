package iogtdb_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gnames/gn"
	"github.com/gnames/gnclade/internal/iodownload"
	"github.com/gnames/gnclade/internal/iogtdb"
	"github.com/gnames/gnclade/internal/iosqlite"
	"github.com/gnames/gnclade/internal/iotesting"
	"github.com/gnames/gnclade/pkg/config"
	"github.com/gnames/gnclade/pkg/errcode"
	"github.com/gnames/gnclade/pkg/gnclade"
	"github.com/gnames/gnclade/pkg/prune"
	"github.com/gnames/gnclade/pkg/schema"
	"github.com/gnames/gnclade/pkg/taxon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(dir, date string) string {
	return fmt.Sprintf(`<tr><td><img src="/icons/folder.gif" alt="[DIR]"></td>
<td class="n"><a href="%s/">%s</a>/</td><td class="m">%s</td></tr>`,
		dir, dir, date)
}

func TestParseIndex(t *testing.T) {
	html := row("release95", "2020-07-17 10:00") +
		row("release220", "2024-04-24 12:30") +
		row("release214", "2023-04-28 09:15") +
		row("bad", "yesterday")

	res := iogtdb.ParseIndex(html, "https://x/")
	require.Len(t, res, 3)
	assert.Equal(t, "release220", res[0].Version)
	assert.Equal(t, "https://x/release220/", res[0].URL)
	assert.Equal(t, "release95", res[2].Version)
}

func TestReleases(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, row("release95", "2020-07-17 10:00")+
			row("release214", "2023-04-28 09:15")+
			row("release220", "2024-04-24 12:30"))
	})
	mux.HandleFunc("/release220/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, row("220.0", "2024-04-24 12:30"))
	})
	mux.HandleFunc("/release214/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, row("214.0", "2023-04-28 09:15")+
			row("214.1", "2023-05-10 09:15"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dl := iodownload.New(iodownload.OptBackoff(0))
	rels, err := iogtdb.Releases(context.Background(), dl, srv.URL+"/")
	require.NoError(t, err)
	require.Len(t, rels, 2)
	assert.Equal(t, "release220", rels[0].Version)
	assert.Len(t, rels[1].SubVersions, 2)
	assert.Contains(t, iogtdb.Format(rels), "  - 214.1 (2023-05-10)")

	tests := []struct {
		version, want string
		code          gn.ErrorCode
	}{
		{"", "220.0", 0},
		{"214.0", "214.0", 0},
		{"999.0", "", errcode.SourceReleaseNotFoundError},
	}
	for _, v := range tests {
		sv, err := iogtdb.Find(rels, v.version)
		if v.code != 0 {
			assertCode(t, err, v.code)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, v.want, sv.Version)
	}
}

func TestParseFiles(t *testing.T) {
	html := `<a href="../">up</a>
<a class="plausible-event-name=Download" href="ar53_r220.tree">x</a>
<a href="ar53_r220.tree.tar.gz">x</a>
<a href="bac120_r220.tree">x</a>
<a href="ar53_metadata_r220.tsv.gz">x</a>
<a href="bac120_metadata_r220.tsv.gz">x</a>
<a href="auxillary_files/">aux</a>`

	files, err := iogtdb.ParseFiles(html, "https://x/220.0/")
	require.NoError(t, err)
	assert.Equal(t, "https://x/220.0/ar53_r220.tree", files.ArTree)
	assert.Equal(t, "https://x/220.0/bac120_metadata_r220.tsv.gz", files.BacMetadata)
	assert.Len(t, files.All(), 4)

	_, err = iogtdb.ParseFiles(`<a href="ar53_r220.tree">x</a>`, "https://x/")
	assertCode(t, err, errcode.SourceMissingFilesError)
}

func TestTreeLabel(t *testing.T) {
	tests := []struct {
		label, name, rank string
		support           float64
	}{
		{"", "", "", 0},
		{"100.0", "", "", 100},
		{"100.0:g__Escherichia", "g__Escherichia", "genus", 100},
		{"95.2:d__Bacteria; p__Pseudomonadota", "p__Pseudomonadota", "phylum", 95.2},
		{"GB_GCA_000008085.1", "GB_GCA_000008085.1", "genome", 0},
		{"s__Escherichia coli", "s__Escherichia coli", "species", 0},
	}
	for _, v := range tests {
		name, rank, support := iogtdb.TreeLabel(v.label)
		assert.Equal(t, v.name, name, v.label)
		assert.Equal(t, v.rank, rank, v.label)
		assert.Equal(t, v.support, support, v.label)
	}
}

const arMeta = "accession\tambiguous_bases\tgtdb_taxonomy\tncbi_taxid\n" +
	"GB_GCA_000008085.1\t0\td__Archaea;p__Nanoarchaeota;s__Nanoarchaeum equitans\t228908\n" +
	"RS_GCF_000017165.1\t0\td__Archaea;p__Methanobacteriota;s__Methanococcus vannielii\tnone\n"

const bacMeta = "accession\tgtdb_taxonomy\tncbi_taxid\n" +
	"RS_GCF_000005845.2\td__Bacteria;p__Pseudomonadota;s__Escherichia coli\t511145\n"

func TestParseMetadata(t *testing.T) {
	dir := t.TempDir()
	ar := iotesting.WriteFile(t, dir, "ar53_metadata_r220.tsv", arMeta)
	bac := iotesting.WriteFile(t, dir, "bac120_metadata_r220.tsv", bacMeta)

	recs, err := iogtdb.ParseMetadata(context.Background(), 1, ar, bac)
	require.NoError(t, err)
	// root, d__Archaea, 2 phyla, 2 species, 2 genomes,
	// d__Bacteria, phylum, species, genome
	assert.Len(t, recs, 12)

	tbl, err := taxon.New(recs)
	require.NoError(t, err)
	assert.Equal(t, "root", tbl.Name(0))
	assert.Equal(t, tbl.ID(0), tbl.ParentID(0))

	pos := tbl.LookupByName("GB_GCA_000008085.1")
	require.Len(t, pos, 1)
	r := tbl.Record(pos[0])
	assert.Equal(t, "genome", r.Rank)
	assert.Equal(t, "228908", r.ExtID)
	parent, err := tbl.LookupByID(r.ParentID)
	require.NoError(t, err)
	assert.Equal(t, "s__Nanoarchaeum equitans", tbl.Name(parent))
	assert.Equal(t, "species", tbl.Rank(parent))

	pos = tbl.LookupByName("RS_GCF_000017165.1")
	require.Len(t, pos, 1)
	assert.Empty(t, tbl.ExtID(pos[0]))

	bad := iotesting.WriteFile(t, dir, "bad.tsv", "id\tname\n1\tx\n")
	_, err = iogtdb.ParseMetadata(context.Background(), 1, bad)
	assertCode(t, err, errcode.SourceParseError)
}

const arTree = `('100.0:p__Nanoarchaeota':0.5,(GB_GCA_000008085.1:0.1,RS_GCF_000017165.1:0.2)'98.5:d__Archaea; p__Methanobacteriota':0.3)root;`

func TestParseTree(t *testing.T) {
	path := iotesting.WriteFile(t, t.TempDir(), "ar53_r220.tree", arTree)
	recs, err := iogtdb.ParseTree(path, 1)
	require.NoError(t, err)
	require.Len(t, recs, 5)
	assert.Equal(t, "p__Nanoarchaeota", recs[1].Name)
	assert.Equal(t, 0.5, recs[1].Distance)
	assert.Equal(t, 100.0, recs[1].Support)
	assert.Equal(t, "p__Methanobacteriota", recs[2].Name)
	assert.Equal(t, 98.5, recs[2].Support)
	assert.Zero(t, recs[3].Support)
	assert.Equal(t, "genome", recs[3].Rank)
	assert.Equal(t, recs[2].ID, recs[3].ParentID)
}

func TestTreeSupportStored(t *testing.T) {
	ctx := context.Background()
	path := iotesting.WriteFile(t, t.TempDir(), "ar53_r220.tree", arTree)
	recs, err := iogtdb.ParseTree(path, 1)
	require.NoError(t, err)

	st, err := iosqlite.Open(filepath.Join(t.TempDir(), "gnclade.db"), 100)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Init(ctx))
	ds := schema.Dataset{ID: iogtdb.DatasetTreeAr, Version: "220.0"}
	require.NoError(t, st.SaveDataset(ctx, ds, recs))

	_, loaded, err := st.LoadDataset(ctx, iogtdb.DatasetTreeAr, "220.0")
	require.NoError(t, err)
	assert.Equal(t, recs, loaded)

	tbl, err := taxon.New(loaded)
	require.NoError(t, err)
	cfg := config.New()
	cfg.Update([]config.Option{config.OptNewickWithSupport(true)})
	gc, err := gnclade.New(cfg, tbl)
	require.NoError(t, err)

	res, err := gc.Prune(prune.Selection{Names: []string{"GB_GCA_000008085.1"}})
	require.NoError(t, err)
	assert.Equal(t,
		"(('GB_GCA_000008085.1':0.1)'p__Methanobacteriota':0.3[98.50])root:1;",
		res.Newick)
}

func TestLocalFilesImport(t *testing.T) {
	dir := t.TempDir()
	_, err := iogtdb.LocalFiles(dir)
	assertCode(t, err, errcode.SourceMissingFilesError)

	iotesting.WriteFile(t, dir, "ar53_metadata_r220.tsv", arMeta)
	iotesting.WriteFile(t, dir, "bac120_metadata_r220.tsv", bacMeta)
	iotesting.WriteFile(t, dir, "ar53_r220.tree", arTree)
	iotesting.WriteFile(t, dir, "bac120_r220.tree", "(RS_GCF_000005845.2:1)'100:d__Bacteria';")
	iotesting.WriteFile(t, dir, "ar53_r220.tree.gz", "ignored")

	files, err := iogtdb.LocalFiles(dir)
	require.NoError(t, err)

	st := newMemStore()
	err = iogtdb.Import(context.Background(), st, files, "220.0", "https://x/", 1)
	require.NoError(t, err)
	for _, id := range iogtdb.Datasets {
		assert.Contains(t, st.saved, id+"/220.0")
	}
	assert.Len(t, st.saved["gtdb-tree-bac/220.0"], 2)
}

// memStore records saved datasets.
type memStore struct {
	saved map[string][]taxon.Record
}

func newMemStore() *memStore {
	return &memStore{saved: make(map[string][]taxon.Record)}
}

func (m *memStore) Init(context.Context) error { return nil }

func (m *memStore) SaveDataset(
	_ context.Context, ds schema.Dataset, recs []taxon.Record,
) error {
	m.saved[ds.ID+"/"+ds.Version] = recs
	return nil
}

func (m *memStore) LoadDataset(
	context.Context, string, string,
) (schema.Dataset, []taxon.Record, error) {
	return schema.Dataset{}, nil, errors.New("not implemented")
}

func (m *memStore) Datasets(context.Context) ([]schema.Dataset, error) {
	return nil, nil
}

func (m *memStore) Close() error { return nil }

func assertCode(t *testing.T, err error, code gn.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	var gnErr *gn.Error
	require.True(t, errors.As(err, &gnErr))
	assert.Equal(t, code, gnErr.Code)
}
