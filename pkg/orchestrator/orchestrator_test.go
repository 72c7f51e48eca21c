package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/glorpus-work/yumsync/pkg/errors"
	"github.com/glorpus-work/yumsync/pkg/hooks"
	hookmocks "github.com/glorpus-work/yumsync/pkg/hooks/mocks"
	ocmocks "github.com/glorpus-work/yumsync/pkg/orchestrator/mocks"
	"github.com/glorpus-work/yumsync/pkg/repomd"
	"github.com/glorpus-work/yumsync/pkg/yum"
	"github.com/glorpus-work/yumsync/test/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// syncedTo fakes a successful Perform that lands revision rev in cfg.DestDir.
func syncedTo(rev string) func(context.Context, *yum.Config, *yum.Result) error {
	return func(_ context.Context, cfg *yum.Config, result *yum.Result) error {
		result.Repo = yum.NewRepo()
		result.Repomd = repomd.New()
		result.Repomd.Revision = rev
		result.DestDir = cfg.DestDir
		result.Repo.SetPath(repomd.Primary, filepath.Join(cfg.DestDir, "repodata", "primary.xml.gz"))
		return nil
	}
}

type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) record(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) phases(id string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, e := range l.events {
		if e.ID == id {
			out = append(out, e.Phase)
		}
	}
	return out
}

func TestSyncAll_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	syncer := ocmocks.NewMockRepoSyncer(ctrl)
	syncer.EXPECT().Perform(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(syncedTo("1700000000")).Times(2)

	log := &eventLog{}
	orch := New(syncer, nil, Hooks{OnEvent: log.record}, nil)

	jobs := []Job{
		{Name: "baseos", Config: &yum.Config{BaseURL: "https://mirror.test/baseos", DestDir: t.TempDir()}},
		{Name: "appstream", Config: &yum.Config{MirrorList: "https://mirror.test/mirrorlist", DestDir: t.TempDir()}},
	}
	outcomes, err := orch.SyncAll(context.Background(), jobs, Options{Concurrency: 2})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	for i, out := range outcomes {
		assert.Equal(t, jobs[i].Name, out.Name)
		assert.NoError(t, out.Err)
		assert.Equal(t, "1700000000", out.Revision())
		assert.Empty(t, out.PreviousRevision)
		assert.False(t, out.Rollback)
		assert.Equal(t, []string{"planning", "syncing", "done"}, log.phases(out.Name))
	}
}

func TestSyncAll_Empty(t *testing.T) {
	orch := New(ocmocks.NewMockRepoSyncer(gomock.NewController(t)), nil, Hooks{}, nil)
	outcomes, err := orch.SyncAll(context.Background(), nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, outcomes)
}

func TestSyncAll_NoSyncer(t *testing.T) {
	_, err := (&Orchestrator{}).SyncAll(context.Background(), []Job{{Name: "x"}}, Options{})
	assert.Error(t, err)
}

func TestSyncAll_Revisions(t *testing.T) {
	tests := []struct {
		name         string
		newRevision  string
		wantRollback bool
	}{
		{name: "newer", newRevision: "1800000000"},
		{name: "unchanged", newRevision: testutil.DefaultRevision},
		{name: "older", newRevision: "1600000000", wantRollback: true},
		{name: "not comparable", newRevision: "not-a-revision"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			previous := testutil.NewFixtureRepo(t)
			syncer := ocmocks.NewMockRepoSyncer(gomock.NewController(t))
			syncer.EXPECT().Perform(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(syncedTo(tt.newRevision))

			log := &eventLog{}
			orch := New(syncer, nil, Hooks{OnEvent: log.record}, nil)
			outcomes, err := orch.SyncAll(context.Background(),
				[]Job{{Name: "fedora", Config: &yum.Config{BaseURL: "https://mirror.test/f", DestDir: previous.Dir}}},
				Options{})
			require.NoError(t, err)

			assert.Equal(t, testutil.DefaultRevision, outcomes[0].PreviousRevision)
			assert.Equal(t, tt.wantRollback, outcomes[0].Rollback)
			if tt.wantRollback {
				assert.Contains(t, log.phases("fedora"), "warning")
			} else {
				assert.NotContains(t, log.phases("fedora"), "warning")
			}
		})
	}
}

func TestSyncAll_LocalSkipsPreviousRevision(t *testing.T) {
	previous := testutil.NewFixtureRepo(t)
	syncer := ocmocks.NewMockRepoSyncer(gomock.NewController(t))
	syncer.EXPECT().Perform(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(syncedTo("1"))

	outcomes, err := New(syncer, nil, Hooks{}, nil).SyncAll(context.Background(),
		[]Job{{Name: "local", Config: &yum.Config{BaseURL: previous.Dir, DestDir: previous.Dir, Local: true}}},
		Options{})
	require.NoError(t, err)
	assert.Empty(t, outcomes[0].PreviousRevision)
	assert.False(t, outcomes[0].Rollback)
}

func TestSyncAll_FailureStopsRemaining(t *testing.T) {
	ctrl := gomock.NewController(t)
	syncer := ocmocks.NewMockRepoSyncer(ctrl)
	syncer.EXPECT().Perform(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("mirror: %w", errors.ErrDownloadFailed)).Times(1)

	jobs := []Job{
		{Name: "first", Config: &yum.Config{BaseURL: "http://a", DestDir: t.TempDir()}},
		{Name: "second", Config: &yum.Config{BaseURL: "http://b", DestDir: t.TempDir()}},
	}
	outcomes, err := New(syncer, nil, Hooks{}, nil).SyncAll(context.Background(), jobs, Options{Concurrency: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrDownloadFailed)
	assert.Contains(t, err.Error(), "2 of 2 repositories failed")
	assert.ErrorIs(t, outcomes[0].Err, errors.ErrDownloadFailed)
	assert.ErrorIs(t, outcomes[1].Err, context.Canceled)
}

func TestSyncAll_KeepGoing(t *testing.T) {
	ctrl := gomock.NewController(t)
	syncer := ocmocks.NewMockRepoSyncer(ctrl)
	gomock.InOrder(
		syncer.EXPECT().Perform(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.ErrBadChecksum),
		syncer.EXPECT().Perform(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(syncedTo("2")),
	)

	jobs := []Job{
		{Name: "broken", Config: &yum.Config{BaseURL: "http://a", DestDir: t.TempDir()}},
		{Name: "fine", Config: &yum.Config{BaseURL: "http://b", DestDir: t.TempDir()}},
	}
	outcomes, err := New(syncer, nil, Hooks{}, nil).SyncAll(context.Background(), jobs, Options{KeepGoing: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 repositories failed")
	assert.ErrorIs(t, outcomes[0].Err, errors.ErrBadChecksum)
	assert.NoError(t, outcomes[1].Err)
	assert.Equal(t, "2", outcomes[1].Revision())
}

func TestSyncOne_Hooks(t *testing.T) {
	ctrl := gomock.NewController(t)
	syncer := ocmocks.NewMockRepoSyncer(ctrl)
	scripts := hookmocks.NewMockManager(ctrl)
	dest := t.TempDir()

	scripts.EXPECT().HasHook(gomock.Any()).Return(true).AnyTimes()
	gomock.InOrder(
		scripts.EXPECT().Execute(gomock.Any(), hooks.PreSync, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ hooks.HookType, sc hooks.SyncContext) error {
				assert.Equal(t, "epel", sc.RepoName)
				assert.Empty(t, sc.Revision)
				return nil
			}),
		syncer.EXPECT().Perform(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(syncedTo("1700000001")),
		scripts.EXPECT().Execute(gomock.Any(), hooks.PostSync, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ hooks.HookType, sc hooks.SyncContext) error {
				assert.Equal(t, "1700000001", sc.Revision)
				assert.Equal(t, dest, sc.DestDir)
				assert.Equal(t, map[string]string{"primary": filepath.Join(dest, "repodata", "primary.xml.gz")}, sc.Files)
				return nil
			}),
	)

	log := &eventLog{}
	out := New(syncer, scripts, Hooks{OnEvent: log.record}, nil).
		SyncOne(context.Background(), Job{Name: "epel", Config: &yum.Config{BaseURL: "http://epel", DestDir: dest}})
	require.NoError(t, out.Err)
	assert.Equal(t, []string{"planning", "hook", "syncing", "hook", "done"}, log.phases("epel"))
}

func TestSyncOne_PreSyncFailureSkipsSync(t *testing.T) {
	ctrl := gomock.NewController(t)
	syncer := ocmocks.NewMockRepoSyncer(ctrl)
	scripts := hookmocks.NewMockManager(ctrl)

	scripts.EXPECT().HasHook(hooks.PreSync).Return(true)
	scripts.EXPECT().Execute(gomock.Any(), hooks.PreSync, gomock.Any()).Return(errors.ErrHookScript)

	out := New(syncer, scripts, Hooks{}, nil).
		SyncOne(context.Background(), Job{Name: "epel", Config: &yum.Config{BaseURL: "http://epel", DestDir: t.TempDir()}})
	assert.ErrorIs(t, out.Err, errors.ErrHookScript)
	assert.Nil(t, out.Result)
}

func TestSyncOne_WithTengoScripts(t *testing.T) {
	syncer := ocmocks.NewMockRepoSyncer(gomock.NewController(t))
	syncer.EXPECT().Perform(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(syncedTo("5"))

	scripts := hooks.NewTengoExecutor()
	require.NoError(t, scripts.AddHook(hooks.Hook{
		Type:    hooks.PostSync,
		Content: `if revision == "5" { err = "refusing revision " + revision }`,
	}))

	out := New(syncer, scripts, Hooks{}, nil).
		SyncOne(context.Background(), Job{Name: "r", Config: &yum.Config{BaseURL: "http://r", DestDir: t.TempDir()}})
	require.ErrorIs(t, out.Err, errors.ErrHookScript)
	assert.Contains(t, out.Err.Error(), "refusing revision 5")
	assert.NotNil(t, out.Result)
}

func TestSyncOne_NilConfig(t *testing.T) {
	out := New(ocmocks.NewMockRepoSyncer(gomock.NewController(t)), nil, Hooks{}, nil).
		SyncOne(context.Background(), Job{Name: "x"})
	assert.Error(t, out.Err)
}
