// Package iofs manages files and directories of GNclade: config, cache,
// data and log locations, output files and input lists.
package iofs

import (
	"bufio"
	_ "embed"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gnames/gnclade/pkg/config"
)

// ConfigYAML is the default config.yaml.
//
//go:embed config.yaml
var ConfigYAML string

// EnsureDirs creates config, cache, data and log directories.
func EnsureDirs(homeDir string) error {
	dirs := []string{
		config.ConfigDir(homeDir),
		config.CacheDir(homeDir),
		config.DataDir(homeDir),
		config.LogDir(homeDir),
	}
	for _, v := range dirs {
		if err := TouchDir(v); err != nil {
			return err
		}
	}
	return nil
}

// TouchDir creates a directory with parents unless it exists.
func TouchDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return CreateDirError(dir, err)
	}

	return nil
}

// EnsureConfigFile copies the default config.yaml unless the user
// already has one.
func EnsureConfigFile(homeDir string) error {
	configPath := config.ConfigFilePath(homeDir)

	if _, err := os.Stat(configPath); err == nil {
		return nil
	}

	if err := os.WriteFile(configPath, []byte(ConfigYAML), 0644); err != nil {
		return ConfigFileError(configPath, err)
	}

	return nil
}

// WriteOutput saves a result to path. Empty path or "-" means STDOUT.
func WriteOutput(path, s string) error {
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	if path == "" || path == "-" {
		if _, err := io.WriteString(os.Stdout, s); err != nil {
			return NewickWriteError(path, err)
		}
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := TouchDir(dir); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, []byte(s), 0644); err != nil {
		return NewickWriteError(path, err)
	}
	return nil
}

// ReadTokens reads selection tokens from files. Tokens are separated by
// commas or new lines, empty tokens and surrounding blanks are dropped.
func ReadTokens(paths ...string) ([]string, error) {
	var res []string
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, TokensReadError(path, 0, err)
		}
		var line int
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			line++
			res = append(res, SplitTokens(sc.Text())...)
		}
		err = sc.Err()
		f.Close()
		if err != nil {
			return nil, TokensReadError(path, line+1, err)
		}
	}
	return res, nil
}

// SplitTokens splits a comma separated list.
func SplitTokens(s string) []string {
	var res []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			res = append(res, v)
		}
	}
	return res
}
