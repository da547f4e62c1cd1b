// Package storage persists positions and perft results in BadgerDB, keyed
// by Zobrist hash.
package storage

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "chessrules"

// GetDataDir returns the per-user data directory, creating it if needed:
// Application Support on macOS, %AppData% on Windows and $XDG_DATA_HOME
// (or ~/.local/share) elsewhere. CHESSRULES_HOME overrides all of them.
func GetDataDir() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return mkdir(dir)
}

// GetDatabaseDir returns the BadgerDB directory inside the data directory.
func GetDatabaseDir() (string, error) {
	dir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	return mkdir(filepath.Join(dir, "db"))
}

func dataDir() (string, error) {
	if dir := os.Getenv("CHESSRULES_HOME"); dir != "" {
		return dir, nil
	}
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(base, appName), nil
	}
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, appName), nil
}

func mkdir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}
