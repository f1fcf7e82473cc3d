// Package config provides configuration management for GNclade.
//
// This package has no I/O dependencies (no file operations, no network calls).
// Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in config.yaml)
// - Environment variables match ToOptions() fields exactly
//
// # Persistent vs Runtime Fields
//
// Persistent fields (in ToOptions, config.yaml, and env vars):
//   - Log: level, format, destination
//   - Newick: precision, default_distance, with_lengths, with_support,
//     with_id, underscores, canonical
//   - Prune: reject_forest, trim_to_lca
//   - Store: backend
//   - Database: host, port, user, password, database, ssl_mode, batch_size
//   - Sources: ncbi_url, gtdb_url
//   - General: jobs_number
//
// Runtime-only fields (CLI flags only):
//   - HomeDir (set once at startup)
//
// # Environment Variables
//
// Use GNCLADE_ prefix with underscores for nesting:
//
//	GNCLADE_NEWICK_PRECISION=6
//	GNCLADE_STORE_BACKEND=postgres
//	GNCLADE_DATABASE_HOST=localhost
//	GNCLADE_LOG_LEVEL=info
//	GNCLADE_JOBS_NUMBER=8
package config

import (
	"runtime"
)

// Config represents the complete GNclade configuration.
type Config struct {
	Log LogConfig `mapstructure:"log" yaml:"log"`

	// Newick contains settings of Newick output.
	Newick NewickConfig `mapstructure:"newick" yaml:"newick"`

	// Prune contains settings of subtree extraction.
	Prune PruneConfig `mapstructure:"prune" yaml:"prune"`

	// Store selects where parsed datasets are kept.
	Store StoreConfig `mapstructure:"store" yaml:"store"`

	// Database contains PostgreSQL connection settings. They are used
	// only with the postgres store backend.
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	// Sources contains URLs of taxonomic data providers.
	Sources SourcesConfig `mapstructure:"sources" yaml:"sources"`

	// JobsNumber is the number of concurrent workers for parallel operations.
	// Default value is set accoring to the number of available threads.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`

	// HomeDir determines where config, cache, data and logs directories
	// reside. It must be set by CLI during init, there is no default value
	// for it.
	HomeDir string `yaml:"-"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json', 'text' or 'tint' (user-facing and colored).
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// NewickConfig determines how pruned trees are rendered.
type NewickConfig struct {
	// Precision is the number of decimal digits of branch lengths.
	// -1 means the shortest representation that reads back to the same
	// number.
	Precision int `mapstructure:"precision" yaml:"precision"`

	// DefaultDistance is used as a branch length when a source does not
	// provide one (NCBI taxdump, GTDB lineages).
	DefaultDistance float64 `mapstructure:"default_distance" yaml:"default_distance"`

	// WithLengths adds ':distance' to every node.
	WithLengths bool `mapstructure:"with_lengths" yaml:"with_lengths"`

	// WithSupport adds '[support]' to nodes that have a branch support
	// value (GTDB reference trees).
	WithSupport bool `mapstructure:"with_support" yaml:"with_support"`

	// WithID appends '_taxid' to every label.
	WithID bool `mapstructure:"with_id" yaml:"with_id"`

	// Underscores replaces spaces in labels with '_'.
	Underscores bool `mapstructure:"underscores" yaml:"underscores"`

	// Canonical replaces scientific names with their canonical forms
	// (no authorship) using GNparser.
	Canonical bool `mapstructure:"canonical" yaml:"canonical"`
}

// PruneConfig contains settings of the pruning algorithm.
type PruneConfig struct {
	// RejectForest makes a selection that spans several roots an error.
	// By default every root gets its own Newick statement.
	RejectForest bool `mapstructure:"reject_forest" yaml:"reject_forest"`

	// TrimToLCA removes the lineage above the lowest common ancestor of
	// selected taxa.
	TrimToLCA bool `mapstructure:"trim_to_lca" yaml:"trim_to_lca"`
}

// StoreConfig selects the storage backend.
type StoreConfig struct {
	// Backend is 'sqlite' (a file in the data directory) or 'postgres'.
	Backend string `mapstructure:"backend" yaml:"backend"`
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	// Host is the PostgreSQL server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the PostgreSQL server port number.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the PostgreSQL database username.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the PostgreSQL database password.
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the PostgreSQL database name to connect to.
	Database string `mapstructure:"database" yaml:"database"`

	// SSLMode specifies the SSL connection mode.
	// Valid values: "disable", "require", "verify-ca", "verify-full"
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`

	// BatchSize defines the number of records saved per batch.
	// Larger batches are faster but use more memory.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`
}

// SourcesConfig keeps download locations of taxonomies.
type SourcesConfig struct {
	// NCBIURL is the URL of NCBI taxdump archive.
	NCBIURL string `mapstructure:"ncbi_url" yaml:"ncbi_url"`

	// GTDBURL is the URL of GTDB releases directory.
	GTDBURL string `mapstructure:"gtdb_url" yaml:"gtdb_url"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	res := &Config{
		Log: LogConfig{
			Format: "json",
			Level:  "info",
			// for now file is rewritten every time the log starts
			Destination: "file",
		},
		Newick: NewickConfig{
			Precision:       -1,
			DefaultDistance: 1.0,
			WithLengths:     true,
		},
		Store: StoreConfig{
			Backend: "sqlite",
		},
		Database: DatabaseConfig{
			Host:      "localhost",
			Port:      5432,
			User:      "postgres",
			Password:  "postgres",
			Database:  "gnclade",
			SSLMode:   "disable",
			BatchSize: 50_000,
		},
		Sources: SourcesConfig{
			NCBIURL: "https://ftp.ncbi.nih.gov/pub/taxonomy/taxdump.tar.gz",
			GTDBURL: "https://data.gtdb.ecogenomic.org/releases/",
		},
		JobsNumber: runtime.NumCPU(), // Default to number of CPU threads
	}

	return res
}
