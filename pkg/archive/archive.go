// Package archive opens compressed repository metadata. repomd.xml declares
// an open-checksum for files such as primary.xml.gz; checking it needs the
// decompressed stream.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/glorpus-work/yumsync/pkg/fsutil"
	"github.com/mholt/archives"
)

// Manager identifies and decompresses metadata files.
type Manager struct{}

// NewManager creates a new Manager instance.
func NewManager() *Manager {
	return &Manager{}
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc *readCloser) Close() error {
	var first error
	for _, c := range rc.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open returns the decompressed content of path. The bool reports whether
// path was compressed; files in no recognized format are returned as-is.
func (am *Manager) Open(ctx context.Context, path string) (io.ReadCloser, bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open %s: %w", path, err)
	}

	format, stream, err := archives.Identify(ctx, filepath.Base(path), file)
	if errors.Is(err, archives.NoMatch) {
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			_ = file.Close()
			return nil, false, fmt.Errorf("failed to rewind %s: %w", path, err)
		}
		return &readCloser{Reader: file, closers: []io.Closer{file}}, false, nil
	}
	if err != nil {
		_ = file.Close()
		return nil, false, fmt.Errorf("failed to identify %s: %w", path, err)
	}

	decomp, ok := format.(archives.Decompressor)
	if !ok {
		_ = file.Close()
		return nil, false, fmt.Errorf("%s is a %s archive, not a compressed file", path, format.Extension())
	}
	rc, err := decomp.OpenReader(stream)
	if err != nil {
		_ = file.Close()
		return nil, false, fmt.Errorf("failed to decompress %s: %w", path, err)
	}
	return &readCloser{Reader: rc, closers: []io.Closer{rc, file}}, true, nil
}

// Decompress writes the decompressed content of src to dest, replacing it
// atomically. An uncompressed src is copied.
func (am *Manager) Decompress(ctx context.Context, src, dest string) error {
	rc, _, err := am.Open(ctx, src)
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	if err := fsutil.EnsureFileDir(dest); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, rc); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to decompress %s: %w", src, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	if err := os.Chmod(tmp.Name(), fsutil.FileModeDefault); err != nil {
		return fmt.Errorf("failed to set permissions for %s: %w", dest, err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", dest, err)
	}
	return nil
}
