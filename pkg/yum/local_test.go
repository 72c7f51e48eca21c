package yum

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	dlmocks "github.com/glorpus-work/yumsync/pkg/download/mocks"
	"github.com/glorpus-work/yumsync/pkg/errors"
	"github.com/glorpus-work/yumsync/pkg/repomd"
	"github.com/glorpus-work/yumsync/test/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// newLocalSyncer returns a Syncer whose transport must never be used.
func newLocalSyncer(t *testing.T) *Syncer {
	t.Helper()
	return NewSyncer(dlmocks.NewMockManager(gomock.NewController(t)), nil)
}

func TestLocalRoot(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "/srv/repo", want: "/srv/repo"},
		{in: "file:///srv/repo", want: "/srv/repo"},
		{in: "file://localhost/srv/repo", want: "/srv/repo"},
		{in: "file:///srv/my%20repo", want: "/srv/my repo"},
		{in: "file://fileserver/srv/repo", wantErr: true},
		{in: "relative/repo", want: "relative/repo"},
		{in: "http://mirror/repo", wantErr: true},
		{in: "ftp://mirror/repo", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := localRoot(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, errors.ErrNotLocal)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPerform_Local(t *testing.T) {
	fixture := testutil.NewFixtureRepo(t)

	for _, base := range []string{fixture.Dir, "file://" + fixture.Dir} {
		t.Run(base, func(t *testing.T) {
			s := newLocalSyncer(t)
			cfg := &Config{BaseURL: base, Local: true, Flags: repomd.AllKinds, Checks: CheckChecksum}
			result := &Result{}
			require.NoError(t, s.Perform(context.Background(), cfg, result))

			assert.Equal(t, fixture.Dir, result.DestDir)
			assert.Equal(t, fixture.Dir, result.Repo.DestDir)
			assert.Equal(t, base, result.Repo.URL)
			assert.Equal(t, filepath.Join(fixture.Dir, "repodata", "repomd.xml"), result.Repo.Repomd)
			assert.Equal(t, fixture.Revision, result.Repomd.Revision)
			for k := range fixture.Files {
				assert.Equal(t, fixture.Path(k), result.Repo.Path(k))
				assert.FileExists(t, result.Repo.Path(k))
			}
		})
	}
}

func TestUseLocal_HrefOutsideRepository(t *testing.T) {
	root := filepath.Join(t.TempDir(), "repo")
	s := newLocalSyncer(t)
	result := &Result{Repo: NewRepo(), Repomd: manifestWith(map[repomd.Kind]string{
		repomd.Primary:   "../../outside.txt",
		repomd.Filelists: "repodata/filelists.xml.gz",
		repomd.Other:     "/repodata/other.xml.gz",
	})}
	cfg := &Config{BaseURL: root, Local: true, Update: true, Flags: repomd.AllKinds}

	require.NoError(t, s.useLocal(cfg, result))
	assert.Empty(t, result.Repo.Path(repomd.Primary))
	assert.Equal(t, filepath.Join(root, "repodata", "filelists.xml.gz"), result.Repo.Path(repomd.Filelists))
	assert.Equal(t, filepath.Join(root, "repodata", "other.xml.gz"), result.Repo.Path(repomd.Other))
}

func TestPerform_LocalNoExistenceCheck(t *testing.T) {
	fixture := testutil.NewFixtureRepo(t)
	require.NoError(t, os.Remove(fixture.Path(repomd.Filelists)))

	s := newLocalSyncer(t)
	result := &Result{}
	cfg := &Config{BaseURL: fixture.Dir, Local: true, Flags: repomd.AllKinds}
	require.NoError(t, s.Perform(context.Background(), cfg, result))
	assert.Equal(t, fixture.Path(repomd.Filelists), result.Repo.Path(repomd.Filelists))

	cfg.Checks = CheckChecksum
	err := s.Perform(context.Background(), cfg, &Result{})
	assert.ErrorIs(t, err, errors.ErrIO)
}

func TestPerform_LocalErrors(t *testing.T) {
	malformed := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(malformed, "repodata"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(malformed, "repodata", "repomd.xml"), []byte("<repomd"), 0o644))

	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{name: "remote scheme", cfg: Config{BaseURL: "https://mirror/repo"}, wantErr: errors.ErrNotLocal},
		{name: "mirrorlist only", cfg: Config{MirrorList: "/srv/mirrors"}, wantErr: errors.ErrNoURL},
		{name: "missing repomd", cfg: Config{BaseURL: t.TempDir()}, wantErr: errors.ErrIO},
		{name: "malformed repomd", cfg: Config{BaseURL: malformed}, wantErr: errors.ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.Local = true
			cfg.Flags = repomd.AllKinds
			err := newLocalSyncer(t).Perform(context.Background(), &cfg, &Result{})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPerform_LocalUpdate(t *testing.T) {
	fixture := testutil.NewFixtureRepo(t)
	s := newLocalSyncer(t)

	result := &Result{}
	cfg := &Config{BaseURL: fixture.Dir, Local: true, Flags: repomd.Primary.Flag()}
	require.NoError(t, s.Perform(context.Background(), cfg, result))
	require.Empty(t, result.Repo.Path(repomd.Other))

	// repomd.xml is not read again on update
	require.NoError(t, os.Remove(filepath.Join(fixture.Dir, "repodata", "repomd.xml")))
	result.Repo.SetPath(repomd.Primary, "/kept/primary.xml")

	cfg.Update = true
	cfg.Flags = repomd.AllKinds
	require.NoError(t, s.Perform(context.Background(), cfg, result))
	assert.Equal(t, "/kept/primary.xml", result.Repo.Path(repomd.Primary))
	assert.Equal(t, fixture.Path(repomd.Other), result.Repo.Path(repomd.Other))
}
