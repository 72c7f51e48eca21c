package yum

import (
	"github.com/glorpus-work/yumsync/pkg/checksum"
	"github.com/glorpus-work/yumsync/pkg/errors"
	"github.com/glorpus-work/yumsync/pkg/repomd"
)

// CheckRepoChecksums verifies every resolved file of repo against the
// checksum manifest declares for it. Kinds are checked in table order and
// the first failure is returned. Kinds without a record, a path or a
// declared checksum pass. The files are only read.
func CheckRepoChecksums(repo *Repo, manifest *repomd.Manifest) error {
	for _, k := range repomd.AllKindsInOrder() {
		if err := checkRecord(k, manifest.Record(k), repo.Path(k)); err != nil {
			return err
		}
	}
	return nil
}

func checkRecord(k repomd.Kind, rec *repomd.Record, path string) error {
	if rec == nil || path == "" || rec.Checksum == "" {
		return nil
	}

	t := checksum.TypeFromName(rec.ChecksumType)
	if t == checksum.Unknown {
		return errors.Wrapf(errors.ErrUnknownChecksum, "%s: %q", k, rec.ChecksumType)
	}

	ok, err := checksum.FileMatches(t, path, rec.Checksum)
	if err != nil {
		return errors.Wrap(err, k.String())
	}
	if !ok {
		return errors.Wrapf(errors.ErrBadChecksum, "%s: %s", k, path)
	}
	return nil
}
