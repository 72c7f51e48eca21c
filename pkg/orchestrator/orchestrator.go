// Package orchestrator synchronizes a set of configured repositories. It
// wraps each yum sync with revision bookkeeping, progress events and the
// pre-sync and post-sync hooks.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/glorpus-work/yumsync/pkg/hooks"
	"github.com/glorpus-work/yumsync/pkg/repomd"
	"github.com/glorpus-work/yumsync/pkg/yum"
)

// Orchestrator ties the syncer and the hook scripts together.
type Orchestrator struct {
	Syncer  RepoSyncer
	Scripts hooks.Manager // may be nil
	Hooks   Hooks         // Hooks for progress and event notifications
	Logger  *slog.Logger
}

// New constructs an Orchestrator. scripts may be nil when no hook scripts
// are configured; a nil logger discards output.
func New(syncer RepoSyncer, scripts hooks.Manager, h Hooks, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Orchestrator{
		Syncer:  syncer,
		Scripts: scripts,
		Hooks:   h,
		Logger:  logger,
	}
}

func (o *Orchestrator) emit(e Event) {
	if o.Hooks.OnEvent != nil {
		o.Hooks.OnEvent(e)
	}
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// SyncAll synchronizes every job and returns one Outcome per job in job
// order. Unless opts.KeepGoing is set, the first failure cancels the jobs
// that have not finished. The returned error reports how many jobs failed
// and wraps the first failure.
func (o *Orchestrator) SyncAll(ctx context.Context, jobs []Job, opts Options) ([]Outcome, error) {
	if o.Syncer == nil {
		return nil, fmt.Errorf("syncer is not configured")
	}
	outcomes := make([]Outcome, len(jobs))
	if len(jobs) == 0 {
		return outcomes, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := opts.Concurrency
	if workers < 1 {
		workers = 1
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				outcomes[i] = o.SyncOne(ctx, jobs[i])
				if outcomes[i].Err != nil && !opts.KeepGoing {
					cancel()
				}
			}
		}()
	}
	for i := range jobs {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	var (
		failed   int
		firstErr error
	)
	for _, out := range outcomes {
		if out.Err != nil {
			failed++
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", out.Name, out.Err)
			}
		}
	}
	if failed > 0 {
		return outcomes, fmt.Errorf("%d of %d repositories failed: %w", failed, len(jobs), firstErr)
	}
	return outcomes, nil
}

// SyncOne synchronizes a single job: pre-sync hook, fresh sync, revision
// check and post-sync hook.
func (o *Orchestrator) SyncOne(ctx context.Context, job Job) Outcome {
	out := Outcome{Name: job.Name}
	if job.Config == nil {
		out.Err = fmt.Errorf("no sync configuration")
		o.emit(Event{Phase: "error", ID: job.Name, Msg: out.Err.Error()})
		return out
	}
	if err := ctx.Err(); err != nil {
		out.Err = fmt.Errorf("skipped: %w", err)
		return out
	}
	log := o.logger().With("repo", job.Name)

	o.emit(Event{Phase: "planning", ID: job.Name, Msg: syncSource(job.Config)})
	if !job.Config.Local {
		out.PreviousRevision = previousRevision(job.Config.DestDir)
	}

	sc := hooks.SyncContext{
		RepoName:         job.Name,
		DestDir:          job.Config.DestDir,
		BaseURL:          job.Config.BaseURL,
		PreviousRevision: out.PreviousRevision,
	}
	if err := o.runScript(ctx, hooks.PreSync, sc); err != nil {
		out.Err = err
		o.emit(Event{Phase: "error", ID: job.Name, Msg: err.Error()})
		return out
	}

	o.emit(Event{Phase: "syncing", ID: job.Name})
	result := &yum.Result{}
	if err := o.Syncer.Perform(ctx, job.Config, result); err != nil {
		out.Err = err
		log.Debug("sync failed", "error", err)
		o.emit(Event{Phase: "error", ID: job.Name, Msg: err.Error()})
		return out
	}
	out.Result = result

	if out.PreviousRevision != "" {
		cmp, err := repomd.CompareRevisions(out.Revision(), out.PreviousRevision)
		switch {
		case err != nil:
			log.Debug("revisions not comparable", "previous", out.PreviousRevision, "current", out.Revision(), "error", err)
		case cmp < 0:
			out.Rollback = true
			log.Warn("repository revision went backwards", "previous", out.PreviousRevision, "current", out.Revision(), "mirror", result.UsedMirror)
			o.emit(Event{Phase: "warning", ID: job.Name, Msg: fmt.Sprintf("revision went back from %s to %s", out.PreviousRevision, out.Revision())})
		}
	}

	sc.DestDir = result.DestDir
	sc.Mirror = result.UsedMirror
	sc.Revision = out.Revision()
	sc.Files = make(map[string]string)
	for _, k := range repomd.AllKindsInOrder() {
		if p := result.Repo.Path(k); p != "" {
			sc.Files[k.String()] = p
		}
	}
	if err := o.runScript(ctx, hooks.PostSync, sc); err != nil {
		out.Err = err
		o.emit(Event{Phase: "error", ID: job.Name, Msg: err.Error()})
		return out
	}

	o.emit(Event{Phase: "done", ID: job.Name, Msg: out.Revision()})
	return out
}

func (o *Orchestrator) runScript(ctx context.Context, hookType hooks.HookType, sc hooks.SyncContext) error {
	if o.Scripts == nil || !o.Scripts.HasHook(hookType) {
		return nil
	}
	o.emit(Event{Phase: "hook", ID: sc.RepoName, Msg: string(hookType)})
	return o.Scripts.Execute(ctx, hookType, sc)
}

// previousRevision reads the revision of the repomd.xml already in destDir.
// Any failure means there is no usable previous revision.
func previousRevision(destDir string) string {
	f, err := os.Open(filepath.Join(destDir, repomd.Path))
	if err != nil {
		return ""
	}
	defer func() { _ = f.Close() }()
	m, err := repomd.Parse(f)
	if err != nil {
		return ""
	}
	return m.Revision
}

func syncSource(cfg *yum.Config) string {
	if cfg.BaseURL != "" {
		return cfg.BaseURL
	}
	return cfg.MirrorList
}
