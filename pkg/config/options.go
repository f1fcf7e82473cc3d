package config

import (
	"math"
	"strings"

	"github.com/gnames/gn"
)

// Option is a function that modifies a Config.
// Options validate inputs and reject invalid values with warnings.
type Option func(*Config)

// OptLogLevel sets the logging level.
// Valid values: "debug", "info", "warn", "error".
func OptLogLevel(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Level", s) {
			c.Log.Level = s
		}
	}
}

// OptLogFormat sets the log output format.
// Valid values: "json", "text", "tint".
func OptLogFormat(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Format", s) {
			c.Log.Format = s
		}
	}
}

// OptLogDestination sets where logs are written.
// Valid values: "file", "stderr", "stdout".
func OptLogDestination(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Destination", s) {
			c.Log.Destination = s
		}
	}
}

// OptNewickPrecision sets the number of decimal digits of branch lengths.
// -1 selects the shortest round-trip form.
func OptNewickPrecision(i int) Option {
	return func(c *Config) {
		if i < -1 || i > 17 {
			gn.Warn(
				"<em>Newick Precision</em> must be between -1 and 17, ignoring %d",
				i,
			)
			return
		}
		c.Newick.Precision = i
	}
}

// OptNewickDefaultDistance sets the branch length used when a source has
// none.
func OptNewickDefaultDistance(f float64) Option {
	return func(c *Config) {
		if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			gn.Warn(
				"<em>Default Distance</em> must be a non-negative number, "+
					"ignoring %v", f,
			)
			return
		}
		c.Newick.DefaultDistance = f
	}
}

// OptNewickWithLengths toggles branch lengths in the output.
func OptNewickWithLengths(b bool) Option {
	return func(c *Config) {
		c.Newick.WithLengths = b
	}
}

// OptNewickWithSupport toggles branch support values in the output.
func OptNewickWithSupport(b bool) Option {
	return func(c *Config) {
		c.Newick.WithSupport = b
	}
}

// OptNewickWithID toggles appending taxon IDs to labels.
func OptNewickWithID(b bool) Option {
	return func(c *Config) {
		c.Newick.WithID = b
	}
}

// OptNewickUnderscores toggles replacing spaces in labels with underscores.
func OptNewickUnderscores(b bool) Option {
	return func(c *Config) {
		c.Newick.Underscores = b
	}
}

// OptNewickCanonical toggles using canonical forms of names as labels.
func OptNewickCanonical(b bool) Option {
	return func(c *Config) {
		c.Newick.Canonical = b
	}
}

// OptPruneRejectForest toggles failing on selections that span several
// roots.
func OptPruneRejectForest(b bool) Option {
	return func(c *Config) {
		c.Prune.RejectForest = b
	}
}

// OptPruneTrimToLCA toggles removal of the lineage above the lowest
// common ancestor.
func OptPruneTrimToLCA(b bool) Option {
	return func(c *Config) {
		c.Prune.TrimToLCA = b
	}
}

// OptStoreBackend sets the storage of parsed datasets.
// Valid values: "sqlite", "postgres".
func OptStoreBackend(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Store.Backend", s) {
			c.Store.Backend = s
		}
	}
}

// OptDatabaseHost sets the PostgreSQL server hostname or IP address.
func OptDatabaseHost(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Host", s) {
			c.Database.Host = s
		}
	}
}

// OptDatabasePort sets the PostgreSQL server port number.
func OptDatabasePort(i int) Option {
	return func(c *Config) {
		if isValidInt("Database Port", i) {
			c.Database.Port = i
		}
	}
}

// OptDatabaseUser sets the PostgreSQL database username.
func OptDatabaseUser(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database User", s) {
			c.Database.User = s
		}
	}
}

// OptDatabasePassword sets the PostgreSQL database password.
func OptDatabasePassword(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Password", s) {
			c.Database.Password = s
		}
	}
}

// OptDatabaseDatabase sets the PostgreSQL database name to connect to.
func OptDatabaseDatabase(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Name", s) {
			c.Database.Database = s
		}
	}
}

// OptDatabaseSSLMode sets the SSL connection mode.
// Valid values: "disable", "require", "verify-ca", "verify-full".
func OptDatabaseSSLMode(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Database.SSLMode", s) {
			c.Database.SSLMode = s
		}
	}
}

// OptDatabaseBatchSize sets the number of records saved per batch.
func OptDatabaseBatchSize(i int) Option {
	return func(c *Config) {
		if isValidInt("Batch Size", i) {
			c.Database.BatchSize = i
		}
	}
}

// OptSourcesNCBIURL sets the URL of NCBI taxdump archive.
func OptSourcesNCBIURL(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidURL("NCBI URL", s) {
			c.Sources.NCBIURL = s
		}
	}
}

// OptSourcesGTDBURL sets the URL of GTDB releases.
func OptSourcesGTDBURL(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidURL("GTDB URL", s) {
			if !strings.HasSuffix(s, "/") {
				s += "/"
			}
			c.Sources.GTDBURL = s
		}
	}
}

// OptJobsNumber sets the number of concurrent workers for parallel operations.
// Default is runtime.NumCPU().
func OptJobsNumber(i int) Option {
	return func(c *Config) {
		if isValidInt("Jobs Number", i) {
			c.JobsNumber = i
		}
	}
}

// OptHomeDir sets the home directory for config, cache, data and log
// locations. Set once at startup from os.UserHomeDir().
// Runtime-only field - not in ToOptions().
func OptHomeDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Home Directory", s) {
			c.HomeDir = s
		}
	}
}
