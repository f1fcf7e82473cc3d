// Package ioconfig loads configuration from config.yaml and environment
// variables. This is an impure package that handles file system and
// environment access.
package ioconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/gnclade/pkg/config"
	"github.com/gnames/gnclade/pkg/errcode"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that override
// config.yaml values.
const EnvPrefix = "GNCLADE"

// Load reads ~/.config/gnclade/config.yaml (if it exists) and
// GNCLADE_* environment variables on top of default values.
// Precedence: env vars > config file > defaults. The result is only a
// carrier of values, callers apply it via ToOptions to a fresh config.
func Load(homeDir string) (*config.Config, error) {
	cfgPath := config.ConfigFilePath(homeDir)
	v := viper.New()
	v.SetConfigFile(cfgPath)
	v.SetConfigType("yaml")

	setDefaults(v, config.New())
	initEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		if !errors.As(err, &pathErr) {
			return nil, ReadConfigError(cfgPath, err)
		}
	}

	var res config.Config
	if err := v.Unmarshal(&res); err != nil {
		return nil, ReadConfigError(cfgPath, err)
	}

	return &res, nil
}

// setDefaults makes viper aware of every persistent key, so values
// missing from an older config.yaml keep their defaults and can be set
// by environment variables.
func setDefaults(v *viper.Viper, d *config.Config) {
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.destination", d.Log.Destination)

	v.SetDefault("newick.precision", d.Newick.Precision)
	v.SetDefault("newick.default_distance", d.Newick.DefaultDistance)
	v.SetDefault("newick.with_lengths", d.Newick.WithLengths)
	v.SetDefault("newick.with_support", d.Newick.WithSupport)
	v.SetDefault("newick.with_id", d.Newick.WithID)
	v.SetDefault("newick.underscores", d.Newick.Underscores)
	v.SetDefault("newick.canonical", d.Newick.Canonical)

	v.SetDefault("prune.reject_forest", d.Prune.RejectForest)
	v.SetDefault("prune.trim_to_lca", d.Prune.TrimToLCA)

	v.SetDefault("store.backend", d.Store.Backend)

	v.SetDefault("database.host", d.Database.Host)
	v.SetDefault("database.port", d.Database.Port)
	v.SetDefault("database.user", d.Database.User)
	v.SetDefault("database.password", d.Database.Password)
	v.SetDefault("database.database", d.Database.Database)
	v.SetDefault("database.ssl_mode", d.Database.SSLMode)
	v.SetDefault("database.batch_size", d.Database.BatchSize)

	v.SetDefault("sources.ncbi_url", d.Sources.NCBIURL)
	v.SetDefault("sources.gtdb_url", d.Sources.GTDBURL)

	v.SetDefault("jobs_number", d.JobsNumber)
}

func initEnvVars(v *viper.Viper) {
	// We bind variables manually to see clearly which env variables
	// are allowed. They match the fields of config.ToOptions().
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	keys := []string{
		"log.level", "log.format", "log.destination",
		"newick.precision", "newick.default_distance", "newick.with_lengths",
		"newick.with_support", "newick.with_id", "newick.underscores",
		"newick.canonical",
		"prune.reject_forest", "prune.trim_to_lca",
		"store.backend",
		"database.host", "database.port", "database.user",
		"database.password", "database.database", "database.ssl_mode",
		"database.batch_size",
		"sources.ncbi_url", "sources.gtdb_url",
		"jobs_number",
	}
	for _, k := range keys {
		_ = v.BindEnv(k, strings.ToUpper(strings.ReplaceAll(k, ".", "_")))
	}

	v.AutomaticEnv()
}

// ReadConfigError is returned when config.yaml cannot be parsed.
func ReadConfigError(path string, err error) error {
	msg := "Cannot read configuration from <em>%s</em>"
	vars := []any{path}
	return &gn.Error{
		Code: errcode.ReadFileError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot read config %s: %w", path, err),
	}
}
