package fsutil

import (
	"os"
	"path/filepath"
)

const (
	// AppName is the name of the application used in paths
	AppName = "yumsync"
)

// GetCacheDir returns the platform-specific cache directory for the application
// On Linux: ~/.cache/yumsync/
// On macOS: ~/Library/Caches/yumsync/
func GetCacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, AppName), nil
}

// GetConfigDir returns the platform-specific configuration directory.
// On Linux: ~/.config/yumsync/
func GetConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName), nil
}

// GetDefaultConfigPath returns <config_dir>/config.yaml.
func GetDefaultConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// GetRepoDestDir returns the default destination for a named repository:
// <cache_dir>/repos/<name>/
func GetRepoDestDir(name string) (string, error) {
	cacheDir, err := GetCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "repos", name), nil
}
