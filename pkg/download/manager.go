package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/glorpus-work/yumsync/pkg/auth"
	pkgerrors "github.com/glorpus-work/yumsync/pkg/errors"
)

// DefaultUserAgent is sent when the caller does not configure one.
const DefaultUserAgent = "yumsync/1.0"

// ManagerImpl is an HTTP-based download manager that also reads file://
// URLs and bare local paths, so local mirrors work the same way as remote ones.
type ManagerImpl struct {
	client    *http.Client
	userAgent string
	opts      Options
	auth      *auth.Set
}

// NewManager creates a new download manager with the given timeout and user agent.
func NewManager(timeout time.Duration, userAgent string) *ManagerImpl {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &ManagerImpl{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// WithOptions sets the batch options and returns the manager.
func (m *ManagerImpl) WithOptions(opts Options) *ManagerImpl {
	m.opts = opts
	return m
}

// WithAuth sets the credentials applied to HTTP requests and returns the
// manager.
func (m *ManagerImpl) WithAuth(set *auth.Set) *ManagerImpl {
	m.auth = set
	return m
}

// Download fetches a single resource into w.
func (m *ManagerImpl) Download(ctx context.Context, rawURL string, w io.WriteSeeker, suffix string) error {
	if w == nil {
		return fmt.Errorf("nil sink for %s: %w", rawURL, pkgerrors.ErrDownloadFailed)
	}
	target := JoinSuffix(rawURL, suffix)
	if err := resetSink(w); err != nil {
		return err
	}
	return m.fetchOne(ctx, target, w)
}

// DownloadAll downloads every target with a bounded worker pool. All targets
// are attempted; the first error observed is returned after the pool drains.
func (m *ManagerImpl) DownloadAll(ctx context.Context, targets []*Target) error {
	if len(targets) == 0 {
		return nil
	}
	concurrency := m.opts.Concurrency
	if concurrency <= 0 {
		concurrency = max(2, runtime.NumCPU()/2)
	}
	concurrency = min(concurrency, len(targets))

	var (
		firstErr error
		mu       sync.Mutex
		wg       sync.WaitGroup
	)
	tasks := make(chan *Target)

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tasks {
				err := m.Download(ctx, t.URL, t.Sink, "")
				if err == nil {
					continue
				}
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}()
	}

	for i, t := range targets {
		if t == nil {
			mu.Lock()
			if firstErr == nil {
				firstErr = fmt.Errorf("target %d is nil: %w", i, pkgerrors.ErrDownloadFailed)
			}
			mu.Unlock()
			continue
		}
		tasks <- t
	}
	close(tasks)
	wg.Wait()
	return firstErr
}

func (m *ManagerImpl) fetchOne(ctx context.Context, rawURL string, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %s: %w", pkgerrors.ErrDownloadFailed, rawURL, err)
	}

	path, isLocal, err := LocalPath(rawURL)
	if err != nil {
		return err
	}
	if isLocal {
		return copyLocal(path, w)
	}

	resp, err := m.doRequest(ctx, rawURL)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("%w: %s: could not write body: %w", pkgerrors.ErrDownloadFailed, rawURL, err)
	}
	return nil
}

func (m *ManagerImpl) doRequest(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", pkgerrors.ErrDownloadFailed, err)
	}
	req.Header.Set("User-Agent", m.userAgent)
	if err := m.auth.Apply(req); err != nil {
		return nil, fmt.Errorf("%w: apply credentials: %w", pkgerrors.ErrDownloadFailed, err)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pkgerrors.ErrDownloadFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d: %s: %w", resp.StatusCode, rawURL, pkgerrors.ErrDownloadFailed)
	}
	return resp, nil
}

// LocalPath classifies rawURL. file:// URLs and strings without a scheme are
// local; http and https are remote; any other scheme is unsupported. For a
// file URL the decoded path is returned. Its host must be empty or localhost.
func LocalPath(rawURL string) (string, bool, error) {
	if !strings.Contains(rawURL, "://") {
		return rawURL, true, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false, fmt.Errorf("%w: %s: %w", pkgerrors.ErrDownloadFailed, rawURL, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "file":
		if u.Host != "" && !strings.EqualFold(u.Host, "localhost") {
			return "", false, fmt.Errorf("%w: %s: remote file host", pkgerrors.ErrUnsupportedURL, rawURL)
		}
		return u.Path, true, nil
	case "http", "https":
		return "", false, nil
	default:
		return "", false, fmt.Errorf("%w: %s", pkgerrors.ErrUnsupportedURL, rawURL)
	}
}

func copyLocal(path string, w io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", pkgerrors.ErrDownloadFailed, err)
	}
	defer func() { _ = f.Close() }()
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("%w: %s: %w", pkgerrors.ErrDownloadFailed, path, err)
	}
	return nil
}

// resetSink positions w at offset 0 and drops content left by an earlier attempt.
func resetSink(w io.WriteSeeker) error {
	if _, err := w.Seek(0, io.SeekStart); err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrIO, err.Error())
	}
	if t, ok := w.(interface{ Truncate(int64) error }); ok {
		if err := t.Truncate(0); err != nil {
			return pkgerrors.Wrap(pkgerrors.ErrIO, err.Error())
		}
	}
	return nil
}

// JoinSuffix appends suffix to rawURL unless rawURL already ends with it.
// Exactly one slash separates the two parts.
func JoinSuffix(rawURL, suffix string) string {
	if suffix == "" {
		return rawURL
	}
	bare := strings.TrimLeft(suffix, "/")
	if strings.HasSuffix(rawURL, "/"+bare) || rawURL == bare {
		return rawURL
	}
	return strings.TrimRight(rawURL, "/") + "/" + bare
}
