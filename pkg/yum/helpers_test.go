package yum

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/glorpus-work/yumsync/pkg/download"
	dlmocks "github.com/glorpus-work/yumsync/pkg/download/mocks"
	"github.com/glorpus-work/yumsync/pkg/errors"
	"go.uber.org/mock/gomock"
)

// fakeMirror serves in-memory files to a MockManager and records requests.
type fakeMirror struct {
	mu       sync.Mutex
	files    map[string][]byte
	requests []string
}

func newFakeMirror(files map[string][]byte) *fakeMirror {
	return &fakeMirror{files: files}
}

func (f *fakeMirror) fetch(rawURL string, w io.Writer) error {
	f.mu.Lock()
	f.requests = append(f.requests, rawURL)
	body, ok := f.files[rawURL]
	f.mu.Unlock()
	if !ok {
		return fmt.Errorf("unexpected status code: 404: %s: %w", rawURL, errors.ErrDownloadFailed)
	}
	_, err := w.Write(body)
	return err
}

func (f *fakeMirror) download(_ context.Context, rawURL string, w io.WriteSeeker, suffix string) error {
	return f.fetch(download.JoinSuffix(rawURL, suffix), w)
}

func (f *fakeMirror) downloadAll(_ context.Context, targets []*download.Target) error {
	var firstErr error
	for _, t := range targets {
		if err := f.fetch(t.URL, t.Sink); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f *fakeMirror) requested() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

// newMockedSyncer wires a MockManager that answers from mirror.
func newMockedSyncer(t *testing.T, mirror *fakeMirror) (*Syncer, *dlmocks.MockManager) {
	t.Helper()
	ctrl := gomock.NewController(t)
	dl := dlmocks.NewMockManager(ctrl)
	dl.EXPECT().Download(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(mirror.download).AnyTimes()
	dl.EXPECT().DownloadAll(gomock.Any(), gomock.Any()).
		DoAndReturn(mirror.downloadAll).AnyTimes()
	return NewSyncer(dl, nil), dl
}

func bytesReader(b []byte) io.Reader {
	return bytes.NewReader(b)
}
