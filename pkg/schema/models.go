// Package schema provides storage models for parsed taxonomies.
// The same models serve the SQLite store (through generated DDL) and the
// PostgreSQL store (through GORM AutoMigrate).
package schema

import (
	"time"

	"github.com/gnames/gnclade/pkg/taxon"
	"github.com/gnames/gnuuid"
	"github.com/google/uuid"
)

// DDLGenerator defines how Go models generate SQL DDL.
type DDLGenerator interface {
	// TableDDL returns the CREATE TABLE statement for this model.
	TableDDL() string

	// IndexDDL returns CREATE INDEX statements for this model.
	// Returns empty slice if no indexes needed.
	IndexDDL() []string

	// TableName returns the table name for this model.
	TableName() string
}

// Dataset stores metadata of an imported taxonomy version.
type Dataset struct {
	// ID is the name of the source: 'ncbi', 'gtdb', 'gtdb-tree-ar',
	// 'gtdb-tree-bac'.
	ID string `db:"id" ddl:"VARCHAR(50) NOT NULL" gorm:"primaryKey;type:varchar(50)"`

	// Version of the release, 'latest' for NCBI.
	Version string `db:"version" ddl:"VARCHAR(50) NOT NULL" gorm:"primaryKey;type:varchar(50)"`

	// ETag is the HTTP entity tag of the downloaded archive, if any.
	ETag string `db:"etag" ddl:"VARCHAR(255)" gorm:"column:etag;type:varchar(255)"`

	// DataURL is where the data was downloaded from.
	DataURL string `db:"data_url" ddl:"VARCHAR(255)" gorm:"type:varchar(255)"`

	// RecordCount is the number of taxa in the dataset.
	RecordCount int `db:"record_count" ddl:"INT"`

	// UpdatedAt records the time of the import.
	UpdatedAt time.Time `db:"updated_at" ddl:"TIMESTAMP"`
}

// Taxon is a stored taxonomic record.
type Taxon struct {
	// DatasetID refers to Dataset.ID.
	DatasetID string `db:"dataset_id" ddl:"VARCHAR(50) NOT NULL" gorm:"primaryKey;type:varchar(50)"`

	// Version refers to Dataset.Version.
	Version string `db:"version" ddl:"VARCHAR(50) NOT NULL" gorm:"primaryKey;type:varchar(50)"`

	// Position keeps the order of rows in the source.
	Position int `db:"position" ddl:"INT NOT NULL" gorm:"primaryKey;autoIncrement:false"`

	// TaxonID is the identifier of the taxon in the source.
	TaxonID int64 `db:"taxon_id" ddl:"BIGINT NOT NULL" gorm:"not null"`

	// ParentID is the identifier of the parent taxon.
	ParentID int64 `db:"parent_id" ddl:"BIGINT NOT NULL" gorm:"not null"`

	// Name is the display name.
	Name string `db:"name" ddl:"TEXT NOT NULL" gorm:"type:text;not null"`

	// NameID is UUID v5 of the name, it allows to join with other
	// GlobalNames databases.
	NameID uuid.UUID `db:"name_id" ddl:"VARCHAR(36)" gorm:"type:uuid;index"`

	// Rank of the taxon.
	Rank string `db:"rank" ddl:"VARCHAR(100)" gorm:"type:varchar(100)"`

	// Distance to the parent.
	Distance float64 `db:"distance" ddl:"DOUBLE PRECISION NOT NULL DEFAULT 0"`

	// ExtID is an external identifier (NCBI taxid of a GTDB genome).
	ExtID string `db:"ext_id" ddl:"VARCHAR(255)" gorm:"type:varchar(255)"`

	// Support is the branch support value of a tree node, 0 if unknown.
	Support float64 `db:"support" ddl:"DOUBLE PRECISION NOT NULL DEFAULT 0"`
}

// NewTaxon converts a record to a stored taxon.
func NewTaxon(datasetID, version string, pos int, r taxon.Record) Taxon {
	return Taxon{
		DatasetID: datasetID,
		Version:   version,
		Position:  pos,
		TaxonID:   int64(r.ID),
		ParentID:  int64(r.ParentID),
		Name:      r.Name,
		NameID:    gnuuid.New(r.Name),
		Rank:      r.Rank,
		Distance:  r.Distance,
		ExtID:     r.ExtID,
		Support:   r.Support,
	}
}

// Record converts a stored taxon back to a record.
func (t Taxon) Record() taxon.Record {
	return taxon.Record{
		ID:       uint64(t.TaxonID),
		ParentID: uint64(t.ParentID),
		Name:     t.Name,
		Rank:     t.Rank,
		Distance: t.Distance,
		ExtID:    t.ExtID,
		Support:  t.Support,
	}
}
