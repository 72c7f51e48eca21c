//go:generate mockgen -destination=mocks/orchestrator.go -package=mocks . RepoSyncer

package orchestrator

import (
	"context"

	"github.com/glorpus-work/yumsync/pkg/yum"
)

// RepoSyncer performs one repository synchronization; *yum.Syncer is the
// production implementation.
type RepoSyncer interface {
	Perform(ctx context.Context, cfg *yum.Config, result *yum.Result) error
}

// Job is one repository to synchronize.
type Job struct {
	Name   string
	Config *yum.Config
}

// Outcome is what happened to one Job.
type Outcome struct {
	Name   string
	Result *yum.Result
	// PreviousRevision is the revision found in the destination before the
	// sync, or "".
	PreviousRevision string
	// Rollback is set when the new revision is older than the previous one.
	Rollback bool
	Err      error
}

// Revision returns the synchronized revision, or "".
func (o Outcome) Revision() string {
	if o.Result == nil || o.Result.Repomd == nil {
		return ""
	}
	return o.Result.Repomd.Revision
}

// Event represents a simple progress notification.
type Event struct {
	Phase string // planning|syncing|hook|warning|done|error
	ID    string // repository name
	Msg   string
}

// Hooks carries callbacks for progress events.
type Hooks struct {
	OnEvent func(Event)
}

// Options control orchestrator execution.
type Options struct {
	// Concurrency is the number of repositories synced in parallel.
	Concurrency int
	// KeepGoing continues with the remaining repositories after a failure.
	KeepGoing bool
}
