package yum

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/glorpus-work/yumsync/pkg/checksum"
	"github.com/glorpus-work/yumsync/pkg/errors"
	"github.com/glorpus-work/yumsync/pkg/metalink"
	"github.com/glorpus-work/yumsync/pkg/mirrorlist"
)

// isMetalink reports whether a mirror URL points at a metalink. The check is
// a textual convention of mirror managers, the document is not sniffed.
func isMetalink(rawURL string) bool {
	return strings.Contains(rawURL, "metalink")
}

// downloadRepomd writes repomd.xml into sink. The base URL is tried first,
// then the mirrorlist or metalink. It returns the mirror base URL that served
// the file, or "" when the base URL did.
func (s *Syncer) downloadRepomd(ctx context.Context, cfg *Config, sink *os.File) (string, error) {
	var lastErr error

	if cfg.BaseURL != "" {
		err := s.dl.Download(ctx, cfg.BaseURL, sink, repomdSuffix)
		if err == nil {
			s.logger.Debug("repomd downloaded from base url", "url", cfg.BaseURL)
			return "", nil
		}
		s.logger.Debug("base url failed", "url", cfg.BaseURL, "error", err)
		lastErr = err
	}

	if cfg.MirrorList == "" {
		return "", lastErr
	}

	doc, cleanup, err := s.fetchMirrorDocument(ctx, cfg.MirrorList)
	if err != nil {
		return "", err
	}
	defer cleanup()

	if isMetalink(cfg.MirrorList) {
		s.logger.Debug("got metalink", "url", cfg.MirrorList)
		return s.tryMetalink(ctx, cfg, doc, sink)
	}
	s.logger.Debug("got mirrorlist", "url", cfg.MirrorList)
	return s.tryMirrorlist(ctx, doc, sink)
}

// fetchMirrorDocument downloads rawURL into a temporary file positioned at
// offset 0. cleanup closes and removes the file.
func (s *Syncer) fetchMirrorDocument(ctx context.Context, rawURL string) (*os.File, func(), error) {
	tmp, err := os.CreateTemp("", "yumsync-mirrors-*")
	if err != nil {
		return nil, nil, errors.Wrapf(errors.ErrIO, "create temp file: %v", err)
	}
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}

	if err := s.dl.Download(ctx, rawURL, tmp, ""); err != nil {
		cleanup()
		return nil, nil, err
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		cleanup()
		return nil, nil, errors.Wrapf(errors.ErrIO, "rewind mirror document: %v", err)
	}
	return tmp, cleanup, nil
}

func (s *Syncer) tryMetalink(ctx context.Context, cfg *Config, doc io.Reader, sink *os.File) (string, error) {
	ml, err := metalink.Parse(doc, metalink.DefaultFilename)
	if err != nil {
		return "", err
	}
	urls := ml.URLStrings()
	if len(urls) == 0 {
		return "", errors.Wrap(errors.ErrBadMirrorData, "no URLs in metalink")
	}

	var (
		want   checksum.Hint
		verify bool
	)
	if cfg.Checks.Has(CheckChecksum) {
		want, verify = checksum.SelectBest(ml.Hashes)
	}

	var lastErr error
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return "", errors.Wrap(errors.ErrDownloadFailed, err.Error())
		}
		if err := resetSink(sink); err != nil {
			return "", err
		}

		s.logger.Debug("downloading repomd from mirror", "mirror", u)
		if err := s.dl.Download(ctx, u, sink, repomdSuffix); err != nil {
			s.logger.Debug("mirror failed", "mirror", u, "error", err)
			lastErr = err
			continue
		}

		if verify {
			ok, err := checksum.SeekerMatches(checksum.TypeFromName(want.Type), sink, want.Value)
			if err != nil {
				lastErr = err
				continue
			}
			if !ok {
				s.logger.Debug("bad repomd checksum from mirror", "mirror", u, "type", want.Type)
				lastErr = errors.Wrapf(errors.ErrBadChecksum, "repomd.xml from %s", u)
				continue
			}
		}

		return strings.TrimSuffix(u, repomdSuffix), nil
	}
	return "", lastErr
}

func (s *Syncer) tryMirrorlist(ctx context.Context, doc io.Reader, sink *os.File) (string, error) {
	ml, err := mirrorlist.Parse(doc)
	if err != nil {
		return "", err
	}
	if len(ml.URLs) == 0 {
		return "", errors.Wrap(errors.ErrBadMirrorData, "no URLs in mirrorlist")
	}

	var lastErr error
	for _, u := range ml.URLs {
		if err := ctx.Err(); err != nil {
			return "", errors.Wrap(errors.ErrDownloadFailed, err.Error())
		}
		if err := resetSink(sink); err != nil {
			return "", err
		}

		s.logger.Debug("downloading repomd from mirror", "mirror", u)
		if err := s.dl.Download(ctx, u, sink, repomdSuffix); err != nil {
			s.logger.Debug("mirror failed", "mirror", u, "error", err)
			lastErr = err
			continue
		}
		return u, nil
	}
	return "", lastErr
}

// resetSink drops any partial content left by a previous candidate.
func resetSink(f *os.File) error {
	if err := f.Truncate(0); err != nil {
		return errors.Wrapf(errors.ErrIO, "truncate %s: %v", f.Name(), err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return errors.Wrapf(errors.ErrIO, "rewind %s: %v", f.Name(), err)
	}
	return nil
}
