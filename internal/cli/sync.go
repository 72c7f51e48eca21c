package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/glorpus-work/yumsync/internal/logger"
	"github.com/glorpus-work/yumsync/pkg/config"
	"github.com/glorpus-work/yumsync/pkg/orchestrator"
	"github.com/glorpus-work/yumsync/pkg/yum"
	"github.com/spf13/cobra"
)

// adHocName names a repository given only by flags.
const adHocName = "adhoc"

type syncOptions struct {
	baseURL    string
	mirrorList string
	dest       string
	metadata   []string
	local      bool
	noChecksum bool
	keepGoing  bool
	hooksDir   string
}

// NewSyncCmd creates the sync command.
func NewSyncCmd() *cobra.Command {
	opts := &syncOptions{}

	cmd := &cobra.Command{
		Use:   "sync [NAME...]",
		Short: "Synchronize repository metadata",
		Long: `Synchronize the metadata of yum repositories into local directories.

Without arguments every enabled repository of the configuration is
synchronized. Names select repositories, including disabled ones.
With --baseurl or --mirrorlist a single repository is synchronized
without touching the configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.baseURL, "baseurl", "", "Repository base URL")
	cmd.Flags().StringVar(&opts.mirrorList, "mirrorlist", "", "Mirrorlist or metalink URL")
	cmd.Flags().StringVar(&opts.dest, "dest", "", "Destination directory (parent directory for configured repositories)")
	cmd.Flags().StringSliceVar(&opts.metadata, "metadata", nil, "Metadata kinds to fetch (default: all)")
	cmd.Flags().BoolVar(&opts.local, "local", false, "Use a local repository in place")
	cmd.Flags().BoolVar(&opts.noChecksum, "no-checksum", false, "Skip checksum verification")
	cmd.Flags().BoolVar(&opts.keepGoing, "keep-going", false, "Continue with other repositories after a failure")
	cmd.Flags().StringVar(&opts.hooksDir, "hooks-dir", "", "Directory with pre-sync.tengo and post-sync.tengo")

	return cmd
}

func runSync(cmd *cobra.Command, args []string, opts *syncOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	repos, err := selectSyncRepositories(cfg, args, opts)
	if err != nil {
		return err
	}
	if len(repos) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No repositories to synchronize")
		return nil
	}

	jobs := make([]orchestrator.Job, 0, len(repos))
	for _, rc := range repos {
		yc, err := rc.ToYumConfig(cfg.Settings)
		if err != nil {
			return err
		}
		jobs = append(jobs, orchestrator.Job{Name: rc.Name, Config: yc})
	}

	dl, err := loadDownloadManager(cfg)
	if err != nil {
		return err
	}
	scripts, err := loadScripts(cfg, opts.hooksDir)
	if err != nil {
		return err
	}

	orch := orchestrator.New(
		yum.NewSyncer(dl, logger.GetLogger()),
		scripts,
		orchestrator.Hooks{OnEvent: logEvent},
		logger.GetLogger(),
	)

	outcomes, syncErr := orch.SyncAll(cmd.Context(), jobs, syncAllOptions(cfg.Settings, opts.keepGoing))
	printOutcomes(cmd.OutOrStdout(), outcomes)
	if syncErr != nil {
		return fmt.Errorf("failed to sync repositories: %w", syncErr)
	}

	logger.Success("Repositories synchronized", logger.Fields{"count": len(outcomes)})
	return nil
}

// selectSyncRepositories returns the ad hoc repository described by the
// flags, or the configured repositories named in args with the flag
// overrides applied.
func selectSyncRepositories(cfg *config.Config, args []string, opts *syncOptions) ([]*config.RepositoryConfig, error) {
	var checksum *bool
	if opts.noChecksum {
		off := false
		checksum = &off
	}

	if opts.baseURL != "" || opts.mirrorList != "" {
		if len(args) > 1 {
			return nil, fmt.Errorf("an ad hoc repository takes at most one name, got %d", len(args))
		}
		name := adHocName
		if len(args) == 1 {
			name = args[0]
		}
		return []*config.RepositoryConfig{{
			Name:       name,
			BaseURL:    opts.baseURL,
			MirrorList: opts.mirrorList,
			Metadata:   opts.metadata,
			Checksum:   checksum,
			Local:      opts.local,
			DestDir:    opts.dest,
		}}, nil
	}

	selected, err := cfg.SelectRepositories(args...)
	if err != nil {
		return nil, err
	}
	repos := make([]*config.RepositoryConfig, 0, len(selected))
	for _, rc := range selected {
		c := *rc
		if opts.dest != "" {
			c.DestDir = filepath.Join(opts.dest, rc.Name)
		}
		if len(opts.metadata) > 0 {
			c.Metadata = opts.metadata
		}
		if checksum != nil {
			c.Checksum = checksum
		}
		if opts.local {
			c.Local = true
		}
		repos = append(repos, &c)
	}
	return repos, nil
}

func logEvent(e orchestrator.Event) {
	fields := logger.Fields{"repository": e.ID}
	switch e.Phase {
	case "warning":
		logger.Warn(e.Msg, fields)
	case "error":
		logger.Error(e.Msg, fields)
	default:
		logger.Debug(e.Msg, fields)
	}
}

func printOutcomes(w io.Writer, outcomes []orchestrator.Outcome) {
	tabWriter := tabwriter.NewWriter(w, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tabWriter, "REPOSITORY\tREVISION\tSOURCE\tSTATUS")
	for _, o := range outcomes {
		status := "synced"
		switch {
		case o.Err != nil:
			status = "failed: " + o.Err.Error()
		case o.Rollback:
			status = "rolled back from " + o.PreviousRevision
		}
		_, _ = fmt.Fprintf(tabWriter, "%s\t%s\t%s\t%s\n", o.Name, valueOr(o.Revision(), "-"), outcomeSource(o), status)
	}
	_ = tabWriter.Flush()
}

func outcomeSource(o orchestrator.Outcome) string {
	if o.Result == nil || o.Result.Repo == nil {
		return "-"
	}
	if o.Result.UsedMirror != "" {
		return o.Result.UsedMirror
	}
	return valueOr(o.Result.Repo.URL, "-")
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// syncAllOptions bounds repository concurrency by max_parallel_repos. The
// download manager applies max_parallel within each repository.
func syncAllOptions(settings config.Settings, keepGoing bool) orchestrator.Options {
	return orchestrator.Options{
		Concurrency: settings.MaxParallelRepos,
		KeepGoing:   keepGoing,
	}
}
