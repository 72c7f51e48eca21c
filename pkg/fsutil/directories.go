// Package fsutil provides utility functions and constants for file system operations.
package fsutil

import (
	"os"
	"path/filepath"
)

// EnsureDir creates a directory and all necessary parent directories with default permissions if they don't exist.
// It uses DirModeDefault (0755) permissions for the created directories.
// Returns an error if the directory cannot be created or if the path exists but is not a directory.
func EnsureDir(path string) error {
	return EnsureDirPerm(path, DirModeDefault)
}

// EnsureDirPerm is EnsureDir with an explicit mode. An existing directory is
// left untouched.
func EnsureDirPerm(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// EnsureFileDir creates the parent directory of a file path if it doesn't exist.
func EnsureFileDir(filePath string) error {
	dir := filepath.Dir(filePath)
	return EnsureDir(dir)
}
