package yum

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/glorpus-work/yumsync/pkg/download"
	"github.com/glorpus-work/yumsync/pkg/errors"
	"github.com/glorpus-work/yumsync/pkg/fsutil"
	"github.com/glorpus-work/yumsync/pkg/repomd"
)

// repomdSuffix is appended to base URLs to reach the manifest.
const repomdSuffix = "/" + repomd.Path

// Syncer performs repository synchronizations through a download.Manager.
type Syncer struct {
	dl     download.Manager
	logger *slog.Logger
}

// NewSyncer creates a Syncer. A nil logger discards all output.
func NewSyncer(dl download.Manager, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Syncer{dl: dl, logger: logger}
}

// Perform runs one synchronization described by cfg and stores its outcome
// in result.
//
// A fresh sync (cfg.Update false) requires result.Repo and result.Repomd to
// be nil and allocates both. An update requires both from an earlier call
// and only resolves kinds that have no path yet. Files may be left on disk
// when an error is returned.
func (s *Syncer) Perform(ctx context.Context, cfg *Config, result *Result) error {
	if result == nil || cfg == nil {
		return errors.Wrap(errors.ErrBadFuncArg, "config and result are required")
	}
	if cfg.BaseURL == "" && cfg.MirrorList == "" {
		return errors.ErrNoURL
	}

	if cfg.Update {
		if result.Repo == nil || result.Repomd == nil {
			return errors.ErrIncompleteResult
		}
	} else {
		if result.Repo != nil || result.Repomd != nil {
			return errors.ErrAlreadyUsedResult
		}
		result.Repo = NewRepo()
		result.Repomd = repomd.New()
	}

	var err error
	if cfg.Local {
		err = s.useLocal(cfg, result)
	} else {
		err = s.downloadRemote(ctx, cfg, result)
	}
	if err != nil {
		return err
	}

	if cfg.Checks.Has(CheckChecksum) {
		if err := CheckRepoChecksums(result.Repo, result.Repomd); err != nil {
			return err
		}
		s.logger.Debug("all checksums in repository are valid")
	}
	return nil
}

func (s *Syncer) downloadRemote(ctx context.Context, cfg *Config, result *Result) error {
	repodata := filepath.Join(cfg.DestDir, "repodata")
	if err := fsutil.EnsureDirPerm(repodata, fsutil.DirModeRepodata); err != nil {
		return errors.Wrapf(errors.ErrCannotCreateDir, "%s: %v", repodata, err)
	}

	if !cfg.Update {
		if err := s.fetchManifest(ctx, cfg, result); err != nil {
			return err
		}
	}

	targets := s.assembleTargets(cfg, result)
	if err := s.downloadTargets(ctx, targets); err != nil {
		return err
	}
	s.logger.Debug("repository downloaded", "dest", cfg.DestDir, "files", len(targets))
	return nil
}

// fetchManifest downloads and parses repomd.xml and fills the fresh result.
func (s *Syncer) fetchManifest(ctx context.Context, cfg *Config, result *Result) error {
	path := filepath.Join(cfg.DestDir, repomd.Path)
	f, err := fsutil.CreateFilePerm(path, fsutil.FileModeMetadata)
	if err != nil {
		return errors.Wrapf(errors.ErrIO, "create %s: %v", path, err)
	}
	defer func() { _ = f.Close() }()

	mirror, err := s.downloadRepomd(ctx, cfg, f)
	if err != nil {
		return err
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return errors.Wrapf(errors.ErrIO, "rewind %s: %v", path, err)
	}
	if err := result.Repomd.Parse(f); err != nil {
		return err
	}

	result.DestDir = cfg.DestDir
	result.UsedMirror = mirror
	result.Repo.DestDir = cfg.DestDir
	result.Repo.Repomd = path
	result.Repo.URL = cfg.BaseURL
	if mirror != "" {
		result.Repo.URL = mirror
	}
	s.logger.Debug("repomd parsed", "revision", result.Repomd.Revision, "url", result.Repo.URL)
	return nil
}

// effectiveBase is the URL metadata files are fetched from.
func effectiveBase(cfg *Config, result *Result) string {
	switch {
	case result.UsedMirror != "":
		return result.UsedMirror
	case cfg.BaseURL != "":
		return cfg.BaseURL
	default:
		return result.Repo.URL
	}
}
