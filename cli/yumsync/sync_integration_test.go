//go:build integration

package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/glorpus-work/yumsync/pkg/repomd"
	"github.com/glorpus-work/yumsync/test/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSync_ConfiguredRepository(t *testing.T) {
	fixture := testutil.NewFixtureRepo(t, testutil.WithGzip())
	srv := testutil.NewTestServer(t, fixture.Dir)
	dest := t.TempDir()
	cfgPath := writeTempConfig(t, dest, fmt.Sprintf("  - name: base\n    baseurl: %s\n", srv.URL))

	out, err := runCLI(t, "--config", cfgPath, "sync")
	require.NoError(t, err)
	assert.Contains(t, out, "base")
	assert.Contains(t, out, fixture.Revision)

	assert.FileExists(t, syncedFile(dest, "base", repomd.Path))
	for _, ff := range fixture.Files {
		got, err := os.ReadFile(syncedFile(dest, "base", ff.Href))
		require.NoError(t, err)
		assert.Equal(t, ff.Content, got)
	}
}

func TestSync_SelectedMetadata(t *testing.T) {
	fixture := testutil.NewFixtureRepo(t)
	srv := testutil.NewTestServer(t, fixture.Dir)
	dest := t.TempDir()
	cfgPath := writeTempConfig(t, dest, fmt.Sprintf("  - name: base\n    baseurl: %s\n    metadata: [primary]\n", srv.URL))

	_, err := runCLI(t, "--config", cfgPath, "sync")
	require.NoError(t, err)

	assert.FileExists(t, syncedFile(dest, "base", fixture.Files[repomd.Primary].Href))
	assert.NoFileExists(t, syncedFile(dest, "base", fixture.Files[repomd.Filelists].Href))
	assert.Equal(t, 0, srv.Hits("/"+fixture.Files[repomd.Other].Href))
}

func TestSync_AdHocMirrorlist(t *testing.T) {
	fixture := testutil.NewFixtureRepo(t)
	broken := testutil.NewFailingServer(t, http.StatusNotFound)
	good := testutil.NewTestServer(t, fixture.Dir)

	listDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(listDir, "mirrorlist"),
		[]byte(broken.URL+"\n"+good.URL+"\n"), 0o644))
	lists := testutil.NewTestServer(t, listDir)

	cfgPath := writeTempConfig(t, t.TempDir(), "  []\n")
	dest := filepath.Join(t.TempDir(), "out")

	out, err := runCLI(t, "--config", cfgPath, "sync", "--mirrorlist", lists.URL+"/mirrorlist", "--dest", dest)
	require.NoError(t, err)
	assert.Contains(t, out, good.URL)
	assert.FileExists(t, filepath.Join(dest, filepath.FromSlash(repomd.Path)))
}

func TestSync_FailsForMissingRepository(t *testing.T) {
	srv := testutil.NewTestServer(t, t.TempDir())
	cfgPath := writeTempConfig(t, t.TempDir(), fmt.Sprintf("  - name: empty\n    baseurl: %s\n", srv.URL))

	out, err := runCLI(t, "--config", cfgPath, "sync")
	require.Error(t, err)
	assert.Contains(t, out, "failed")
}

func TestSync_KeepGoing(t *testing.T) {
	fixture := testutil.NewFixtureRepo(t)
	good := testutil.NewTestServer(t, fixture.Dir)
	bad := testutil.NewFailingServer(t, http.StatusInternalServerError)
	dest := t.TempDir()
	cfgPath := writeTempConfig(t, dest, fmt.Sprintf(
		"  - name: bad\n    baseurl: %s\n  - name: good\n    baseurl: %s\n", bad.URL, good.URL))

	_, err := runCLI(t, "--config", cfgPath, "sync", "--keep-going")
	require.Error(t, err)
	assert.FileExists(t, syncedFile(dest, "good", repomd.Path))
}

func TestSync_ChecksumMismatch(t *testing.T) {
	fixture := testutil.NewFixtureRepo(t, testutil.WithFile(repomd.Primary, func(ff *testutil.FixtureFile) {
		ff.Checksum = testutil.SHA256Hex([]byte("something else"))
	}))
	srv := testutil.NewTestServer(t, fixture.Dir)
	dest := t.TempDir()
	cfgPath := writeTempConfig(t, dest, fmt.Sprintf("  - name: base\n    baseurl: %s\n", srv.URL))

	_, err := runCLI(t, "--config", cfgPath, "sync")
	require.Error(t, err)

	_, err = runCLI(t, "--config", cfgPath, "sync", "--no-checksum")
	require.NoError(t, err)
}

func TestSync_PostSyncHook(t *testing.T) {
	fixture := testutil.NewFixtureRepo(t)
	srv := testutil.NewTestServer(t, fixture.Dir)
	dest := t.TempDir()

	hook := testutil.WriteFile(t, "post-sync.tengo", `if revision != "1700000000" { err = "unexpected revision " + revision }`)
	content := fmt.Sprintf(`settings:
  dest_dir: %s
  log_level: error
  post_sync_hook: %s
repositories:
  - name: base
    baseurl: %s
`, dest, hook, srv.URL)
	cfgPath := testutil.SetupTestConfig(t, content)

	_, err := runCLI(t, "--config", cfgPath, "sync")
	require.NoError(t, err)

	failing := testutil.WriteFile(t, "post-sync.tengo", `err = "rejected"`)
	content = fmt.Sprintf(`settings:
  dest_dir: %s
  log_level: error
  post_sync_hook: %s
repositories:
  - name: base
    baseurl: %s
`, dest, failing, srv.URL)
	_, err = runCLI(t, "--config", testutil.SetupTestConfig(t, content), "sync")
	require.Error(t, err)
}

func TestSync_NoRepositoriesDoesNothing(t *testing.T) {
	cfgPath := writeTempConfig(t, t.TempDir(), "  []\n")

	out, err := runCLI(t, "--config", cfgPath, "sync")
	require.NoError(t, err)
	assert.Contains(t, out, "No repositories to synchronize")
}
