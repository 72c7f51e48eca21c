package fsutil

import (
	"os"
	"path/filepath"
)

// CreateFilePerm opens name for reading and writing, creating it with perm
// when absent and truncating it otherwise.
func CreateFilePerm(name string, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, perm)
}

// CreateMetadataFile creates name with FileModeMetadata, making missing
// parent directories first. Existing content is discarded.
func CreateMetadataFile(name string) (*os.File, error) {
	if err := EnsureFileDir(name); err != nil {
		return nil, err
	}
	return CreateFilePerm(name, FileModeMetadata)
}

// WriteFileAtomic writes data to a temp file in the target directory and
// renames it over path.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
