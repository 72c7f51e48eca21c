package yum

import (
	"context"
	"io"
	"os"

	"github.com/glorpus-work/yumsync/pkg/checksum"
	"github.com/glorpus-work/yumsync/pkg/errors"
	"github.com/glorpus-work/yumsync/pkg/repomd"
)

// Opener returns the decompressed content of a metadata file and whether
// it was compressed.
type Opener interface {
	Open(ctx context.Context, path string) (io.ReadCloser, bool, error)
}

// FileReport is the state of one resolved metadata file.
type FileReport struct {
	Kind repomd.Kind
	Path string
	// Size is the size on disk, -1 when the file cannot be read.
	Size int64
	// Checksum is nil when the declared checksum matches or none is
	// declared. ChecksumChecked is false in the latter case.
	Checksum        error
	ChecksumChecked bool
	// OpenChecksum covers the decompressed content, for compressed files
	// whose record declares an open-checksum.
	OpenChecksum        error
	OpenChecksumChecked bool
}

// OK reports whether every performed check passed.
func (r FileReport) OK() bool {
	return r.Size >= 0 && r.Checksum == nil && r.OpenChecksum == nil
}

// Inspect checks every resolved file of repo against manifest, including
// open-checksums of compressed files. Unlike CheckRepoChecksums it does not
// stop at the first failure. Reports are in table order.
func Inspect(ctx context.Context, repo *Repo, manifest *repomd.Manifest, opener Opener) []FileReport {
	var reports []FileReport
	for _, k := range repomd.AllKindsInOrder() {
		path := repo.Path(k)
		rec := manifest.Record(k)
		if path == "" || rec == nil {
			continue
		}

		report := FileReport{Kind: k, Path: path, Size: -1}
		if info, err := os.Stat(path); err == nil {
			report.Size = info.Size()
		}
		if rec.Checksum != "" {
			report.ChecksumChecked = true
			report.Checksum = checkRecord(k, rec, path)
		}
		if rec.OpenChecksum != "" && opener != nil && report.Size >= 0 {
			report.OpenChecksumChecked, report.OpenChecksum = checkOpenChecksum(ctx, k, rec, path, opener)
		}
		reports = append(reports, report)
	}
	return reports
}

func checkOpenChecksum(ctx context.Context, k repomd.Kind, rec *repomd.Record, path string, opener Opener) (bool, error) {
	t := checksum.TypeFromName(rec.OpenChecksumType)
	if t == checksum.Unknown {
		return true, errors.Wrapf(errors.ErrUnknownChecksum, "%s open-checksum: %q", k, rec.OpenChecksumType)
	}

	rc, compressed, err := opener.Open(ctx, path)
	if err != nil {
		return true, errors.Wrapf(errors.ErrIO, "%s: %v", k, err)
	}
	defer func() { _ = rc.Close() }()
	if !compressed {
		return false, nil
	}

	ok, err := checksum.Matches(t, rc, rec.OpenChecksum)
	if err != nil {
		return true, errors.Wrapf(errors.ErrIO, "%s: %v", k, err)
	}
	if !ok {
		return true, errors.Wrapf(errors.ErrBadChecksum, "%s open-checksum: %s", k, path)
	}
	return true, nil
}
