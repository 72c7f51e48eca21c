package yum

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/yumsync/pkg/download"
	"github.com/glorpus-work/yumsync/pkg/fsutil"
	"github.com/glorpus-work/yumsync/pkg/repomd"
)

// fileTarget is one metadata file to download, with its open destination.
type fileTarget struct {
	kind repomd.Kind
	file *os.File
	url  string
}

// assembleTargets opens a destination file for every requested kind that the
// manifest lists and the repo has not resolved yet. Kinds whose destination
// cannot be created are skipped so a partial metadata set can still be
// fetched. Hrefs that would leave cfg.DestDir are skipped the same way. The
// returned files must be closed by the caller.
func (s *Syncer) assembleTargets(cfg *Config, result *Result) []*fileTarget {
	base := effectiveBase(cfg, result)
	repo := result.Repo

	var targets []*fileTarget
	for _, k := range repomd.AllKindsInOrder() {
		if !cfg.Flags.Has(k) {
			continue
		}
		rec := result.Repomd.Record(k)
		if rec == nil || rec.LocationHref == "" {
			continue
		}
		if cfg.Update && repo.Path(k) != "" {
			continue
		}

		rel, ok := localHref(rec.LocationHref)
		if !ok {
			s.logger.Debug("skipping metadata file outside destination", "kind", k.String(), "href", rec.LocationHref)
			repo.SetPath(k, "")
			continue
		}
		dest := filepath.Join(cfg.DestDir, rel)
		f, err := fsutil.CreateMetadataFile(dest)
		if err != nil {
			s.logger.Debug("skipping metadata file", "kind", k.String(), "path", dest, "error", err)
			repo.SetPath(k, "")
			continue
		}

		repo.SetPath(k, dest)
		targets = append(targets, &fileTarget{
			kind: k,
			file: f,
			url:  joinURL(base, rec.LocationHref),
		})
	}
	return targets
}

// downloadTargets fetches all targets in one batch and closes every file,
// whatever the outcome.
func (s *Syncer) downloadTargets(ctx context.Context, targets []*fileTarget) error {
	if len(targets) == 0 {
		return nil
	}
	defer func() {
		for _, t := range targets {
			_ = t.file.Close()
		}
	}()

	batch := make([]*download.Target, 0, len(targets))
	for _, t := range targets {
		batch = append(batch, &download.Target{URL: t.url, Sink: t.file})
	}

	if err := s.dl.DownloadAll(ctx, batch); err != nil {
		s.logger.Debug("metadata download failed", "files", len(batch), "error", err)
		return err
	}
	return nil
}

// joinURL concatenates a base URL and a relative href with one slash.
func joinURL(base, href string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(href, "/")
}

// localHref converts a manifest href into a relative filesystem path. It
// reports false when the path would resolve outside the directory it is
// joined to.
func localHref(href string) (string, bool) {
	rel := filepath.FromSlash(strings.TrimLeft(href, "/"))
	return rel, filepath.IsLocal(rel)
}
