//go:build integration

package main

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/glorpus-work/yumsync/test/testutil"
)

// writeTempConfig writes a config whose repositories are stored under
// destDir. repos is the YAML body of the repositories list.
func writeTempConfig(t *testing.T, destDir, repos string) string {
	t.Helper()
	content := fmt.Sprintf(`settings:
  dest_dir: %s
  log_level: error
  max_parallel: 2
repositories:
%s`, destDir, repos)
	return testutil.SetupTestConfig(t, content)
}

// runCLI executes the root command with args and returns its standard output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// syncedFile is the on-disk path of href inside a synchronized repository.
func syncedFile(destDir, name, href string) string {
	return filepath.Join(destDir, name, filepath.FromSlash(href))
}
