package testutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// TestServer is an HTTP mirror for tests. It serves files from a directory
// and counts requests per path.
type TestServer struct {
	Server *httptest.Server
	URL    string

	mu   sync.Mutex
	hits map[string]int
}

// NewTestServer starts a server that serves files from dir. It is closed
// when the test ends.
func NewTestServer(t *testing.T, dir string) *TestServer {
	t.Helper()
	ts := &TestServer{hits: make(map[string]int)}
	files := http.FileServer(http.Dir(dir))
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.mu.Lock()
		ts.hits[r.URL.Path]++
		ts.mu.Unlock()
		files.ServeHTTP(w, r)
	}))
	ts.URL = ts.Server.URL
	t.Cleanup(ts.Server.Close)
	return ts
}

// NewFailingServer starts a server that answers every request with status.
func NewFailingServer(t *testing.T, status int) *TestServer {
	t.Helper()
	ts := &TestServer{hits: make(map[string]int)}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.mu.Lock()
		ts.hits[r.URL.Path]++
		ts.mu.Unlock()
		w.WriteHeader(status)
	}))
	ts.URL = ts.Server.URL
	t.Cleanup(ts.Server.Close)
	return ts
}

// Hits returns how often path was requested.
func (ts *TestServer) Hits(path string) int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.hits[path]
}

// TotalHits returns the number of requests served.
func (ts *TestServer) TotalHits() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	n := 0
	for _, c := range ts.hits {
		n += c
	}
	return n
}

// SetupTestConfig writes content as config.yaml in a temporary directory
// and returns its path.
func SetupTestConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return configPath
}
