package config

import (
	"path/filepath"
)

var (
	// AppName is used in generating file system paths.
	AppName = "gnclade"
)

// ConfigDir returns the directory path for configuration files.
// Returns ~/.config/gnclade by default.
func ConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config", AppName)
}

// CacheDir returns the directory path for cache files.
// Returns ~/.cache/gnclade by default.
func CacheDir(homeDir string) string {
	return filepath.Join(homeDir, ".cache", AppName)
}

// DataDir returns the directory for downloaded dumps and the SQLite
// store. Returns ~/.local/share/gnclade/data by default.
func DataDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName, "data")
}

// LogDir returns the directory path for log files.
// Returns ~/.local/share/gnclade/logs by default.
func LogDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName, "logs")
}

// ConfigFilePath returns the full path to the config.yaml file.
// Returns ~/.config/gnclade/config.yaml by default.
func ConfigFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "config.yaml")
}

// NCBIDir is where taxdump files are extracted.
func NCBIDir(homeDir string) string {
	return filepath.Join(DataDir(homeDir), "ncbi")
}

// GTDBDir is where files of a GTDB release are kept.
func GTDBDir(homeDir, version string) string {
	return filepath.Join(DataDir(homeDir), "gtdb", version)
}

// SQLitePath returns the path to the SQLite store.
func SQLitePath(homeDir string) string {
	return filepath.Join(DataDir(homeDir), AppName+".sqlite")
}
