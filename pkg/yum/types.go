// Package yum synchronizes the metadata of a yum repository onto local
// storage. A Syncer resolves repomd.xml from a base URL, a mirrorlist or a
// metalink, downloads the requested metadata files in one batch and verifies
// them against the checksums declared in repomd.xml. Local repositories are
// located in place without any network activity.
package yum

import (
	"github.com/glorpus-work/yumsync/pkg/repomd"
)

// Checks is a bitset of post-sync verifications.
type Checks uint32

const (
	// CheckChecksum verifies every resolved file against repomd.xml.
	CheckChecksum Checks = 1 << iota
)

// Has reports whether c contains all bits of x.
func (c Checks) Has(x Checks) bool {
	return c&x == x && x != 0
}

// Config describes one synchronization. It is not modified by Perform.
type Config struct {
	// BaseURL is a repository base URL or, with Local, a filesystem path.
	BaseURL string
	// MirrorList is a mirrorlist or metalink URL. URLs containing
	// "metalink" are treated as metalinks.
	MirrorList string
	// DestDir receives repodata/ on remote syncs.
	DestDir string
	// Flags selects the metadata kinds to fetch or locate.
	Flags repomd.Kinds
	// Checks selects verifications run after the files are resolved.
	Checks Checks
	// Update reuses the Repo and Manifest of a previous Perform call.
	Update bool
	// Local uses BaseURL in place instead of downloading it.
	Local bool
}

// Repo holds the resolved local paths of one synchronized repository.
type Repo struct {
	// Repomd is the path of repomd.xml.
	Repomd string
	// URL is the effective base URL: the selected mirror or the base URL.
	URL string
	// DestDir is the directory the paths are rooted in.
	DestDir string

	paths map[repomd.Kind]string
}

// NewRepo returns an empty Repo.
func NewRepo() *Repo {
	return &Repo{paths: make(map[repomd.Kind]string)}
}

// Path returns the resolved path of kind k, or "".
func (r *Repo) Path(k repomd.Kind) string {
	if r == nil {
		return ""
	}
	return r.paths[k]
}

// SetPath records p as the local path of kind k. An empty p clears it.
func (r *Repo) SetPath(k repomd.Kind, p string) {
	if r.paths == nil {
		r.paths = make(map[repomd.Kind]string)
	}
	if p == "" {
		delete(r.paths, k)
		return
	}
	r.paths[k] = p
}

// Kinds returns the set of kinds with a resolved path.
func (r *Repo) Kinds() repomd.Kinds {
	var ks repomd.Kinds
	for _, k := range repomd.AllKindsInOrder() {
		if r.Path(k) != "" {
			ks = ks.With(k)
		}
	}
	return ks
}

// Result is the caller-owned state of a synchronization. A fresh sync takes
// a zero Result; an update takes the Result of an earlier call.
type Result struct {
	Repo   *Repo
	Repomd *repomd.Manifest
	// DestDir is where repodata/ lives: Config.DestDir for remote syncs,
	// the source path for local ones.
	DestDir string
	// UsedMirror is the mirror base URL that served repomd.xml, empty when
	// the base URL was used.
	UsedMirror string
}
