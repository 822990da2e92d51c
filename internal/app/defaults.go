package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - TAGDB_CONFIG_PATH: config file location (default: ~/.config/tagdb.toml)
//   - TAGDB_HOME: base directory for tagdb data (default: ~/.local/share/tagdb)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
		"location":    filepath.Join(baseDir, "tags.json"),
	}, nil
}

func getConfigPath() (string, error) {
	if path := os.Getenv("TAGDB_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "tagdb.toml"), nil
}

// getBaseDir falls back to the XDG data home layout.
func getBaseDir() (string, error) {
	if path := os.Getenv("TAGDB_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "tagdb"), nil
}
