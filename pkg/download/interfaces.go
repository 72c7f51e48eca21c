//go:generate mockgen -destination=mocks/manager.go -package=mocks . Manager

package download

import (
	"context"
	"io"
)

// Manager defines the transport used to fetch repository files. Both calls
// write into caller-owned sinks; the manager never opens or closes them.
type Manager interface {
	// Download fetches one resource into w. When suffix is non-empty and
	// rawURL does not already end with it, suffix is appended to rawURL.
	Download(ctx context.Context, rawURL string, w io.WriteSeeker, suffix string) error

	// DownloadAll fetches every target concurrently and reports one
	// aggregate outcome: nil only if every target succeeded.
	DownloadAll(ctx context.Context, targets []*Target) error
}

// Target represents one remote resource to download into Sink.
type Target struct {
	URL  string        // source URL (http, https, file:// or a bare local path)
	Sink io.WriteSeeker // destination, rewound and truncated before writing
}

// Options control the behavior of the download manager.
type Options struct {
	Concurrency int // number of parallel downloads; if <=0, a sane default is used
}
