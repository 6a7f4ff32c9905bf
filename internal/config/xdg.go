// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
)

// Dataset file names by mode, matching the distributed CSV bundle.
const (
	kanaDatasetFile  = "hyakunin_issyu.csv"
	kanjiDatasetFile = "hyakunin_issyu_kanji.csv"
	hintsFile        = "kimariji.csv"
)

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultDatasetDir returns the default directory for card datasets.
func DefaultDatasetDir() string {
	return filepath.Join(XDGConfigHome(), "karuta", "datasets")
}

// DatasetPathForMode builds the default dataset path for a mode.
func DatasetPathForMode(mode string) string {
	name := kanaDatasetFile
	if mode == "kanji" {
		name = kanjiDatasetFile
	}
	return filepath.Join(DefaultDatasetDir(), name)
}

// DefaultHintsPath returns the default path for the kimariji hint table.
func DefaultHintsPath() string {
	return filepath.Join(DefaultDatasetDir(), hintsFile)
}

// DefaultDBPath returns the default path for the SQLite database.
func DefaultDBPath() string {
	return filepath.Join(XDGDataHome(), "karuta", "karuta.db")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), "karuta", "config.toml")
}
