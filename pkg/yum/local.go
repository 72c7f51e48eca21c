package yum

import (
	"os"
	"path/filepath"

	"github.com/glorpus-work/yumsync/pkg/download"
	"github.com/glorpus-work/yumsync/pkg/errors"
	"github.com/glorpus-work/yumsync/pkg/repomd"
)

// localRoot returns the filesystem path of a local repository URL. Only
// file:// URLs and bare paths are local.
func localRoot(rawURL string) (string, error) {
	path, ok, err := download.LocalPath(rawURL)
	if err != nil || !ok {
		return "", errors.Wrap(errors.ErrNotLocal, rawURL)
	}
	return path, nil
}

// useLocal locates the repository at cfg.BaseURL in place. Paths are derived
// from repomd.xml without checking that the files exist.
func (s *Syncer) useLocal(cfg *Config, result *Result) error {
	if cfg.BaseURL == "" {
		return errors.Wrap(errors.ErrNoURL, "local repository needs a base URL")
	}
	root, err := localRoot(cfg.BaseURL)
	if err != nil {
		return err
	}

	if !cfg.Update {
		path := filepath.Join(root, repomd.Path)
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(errors.ErrIO, "open %s: %v", path, err)
		}
		err = result.Repomd.Parse(f)
		_ = f.Close()
		if err != nil {
			return err
		}

		result.DestDir = root
		result.Repo.DestDir = root
		result.Repo.Repomd = path
		result.Repo.URL = cfg.BaseURL
		s.logger.Debug("local repomd parsed", "path", path, "revision", result.Repomd.Revision)
	}

	for _, k := range repomd.AllKindsInOrder() {
		if !cfg.Flags.Has(k) || result.Repo.Path(k) != "" {
			continue
		}
		rec := result.Repomd.Record(k)
		if rec == nil || rec.LocationHref == "" {
			continue
		}
		rel, ok := localHref(rec.LocationHref)
		if !ok {
			s.logger.Debug("skipping metadata file outside repository", "kind", k.String(), "href", rec.LocationHref)
			continue
		}
		result.Repo.SetPath(k, filepath.Join(root, rel))
	}
	s.logger.Debug("repository located", "path", root)
	return nil
}
