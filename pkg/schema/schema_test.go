package schema_test

import (
	"testing"

	"github.com/gnames/gnclade/pkg/schema"
	"github.com/gnames/gnclade/pkg/taxon"
	"github.com/gnames/gnuuid"
	"github.com/stretchr/testify/assert"
)

func TestDatasetDDL(t *testing.T) {
	ds := schema.Dataset{}
	ddl := ds.TableDDL()

	assert.Equal(t, "datasets", ds.TableName())
	assert.Contains(t, ddl, "CREATE TABLE IF NOT EXISTS datasets")
	assert.Contains(t, ddl, "id VARCHAR(50) NOT NULL")
	assert.Contains(t, ddl, "etag VARCHAR(255)")
	assert.Contains(t, ddl, "PRIMARY KEY (id, version)")
	assert.Empty(t, ds.IndexDDL())
}

func TestTaxonDDL(t *testing.T) {
	tx := schema.Taxon{}
	ddl := tx.TableDDL()

	assert.Equal(t, "taxa", tx.TableName())
	assert.Contains(t, ddl, "taxon_id BIGINT NOT NULL")
	assert.Contains(t, ddl, "distance DOUBLE PRECISION NOT NULL DEFAULT 0")
	assert.Contains(t, ddl, "PRIMARY KEY (dataset_id, version, position)")
	assert.Len(t, tx.IndexDDL(), 2)
	for _, v := range tx.IndexDDL() {
		assert.Contains(t, v, "ON taxa(")
	}
}

func TestAllDDL(t *testing.T) {
	ddl := schema.AllDDL()
	assert.Len(t, ddl, 4)
	assert.Contains(t, ddl[0], "datasets")
	assert.Contains(t, ddl[1], "taxa")
}

func TestColumns(t *testing.T) {
	cols := schema.Columns(schema.Taxon{})
	assert.Equal(t, []string{
		"dataset_id", "version", "position", "taxon_id", "parent_id",
		"name", "name_id", "rank", "distance", "ext_id", "support",
	}, cols)
	assert.Equal(t, cols, schema.Columns(&schema.Taxon{}))
}

func TestTaxonRecord(t *testing.T) {
	rec := taxon.Record{
		ID: 9606, ParentID: 9605, Name: "Homo sapiens",
		Rank: "species", Distance: 1, ExtID: "x", Support: 87.5,
	}
	tx := schema.NewTaxon("ncbi", "latest", 3, rec)
	assert.Equal(t, "ncbi", tx.DatasetID)
	assert.Equal(t, 3, tx.Position)
	assert.Equal(t, int64(9606), tx.TaxonID)
	assert.Equal(t, gnuuid.New("Homo sapiens"), tx.NameID)
	assert.Equal(t, rec, tx.Record())
}

func TestAllModels(t *testing.T) {
	assert.Len(t, schema.AllModels(), 2)
}
