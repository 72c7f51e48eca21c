package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/glorpus-work/yumsync/internal/logger"
	"github.com/glorpus-work/yumsync/pkg/config"
	"github.com/glorpus-work/yumsync/pkg/errors"
	"github.com/spf13/cobra"
)

// NewRepoCmd creates the repo command with subcommands.
func NewRepoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repo",
		Short: "Manage repositories",
		Long:  "Add, remove, list, enable, disable and import yum repositories",
	}

	cmd.AddCommand(
		newRepoAddCmd(),
		newRepoRemoveCmd(),
		newRepoListCmd(),
		newRepoEnableCmd(true),
		newRepoEnableCmd(false),
		newRepoImportCmd(),
	)

	return cmd
}

func newRepoAddCmd() *cobra.Command {
	repo := &config.RepositoryConfig{}
	var noChecksum bool

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a repository",
		Long:  "Add a repository given by a base URL, a mirrorlist or metalink URL, or both",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			repo.Name = args[0]
			if noChecksum {
				off := false
				repo.Checksum = &off
			}
			return runRepoAdd(repo)
		},
	}

	cmd.Flags().StringVar(&repo.BaseURL, "baseurl", "", "Repository base URL")
	cmd.Flags().StringVar(&repo.MirrorList, "mirrorlist", "", "Mirrorlist or metalink URL")
	cmd.Flags().StringVar(&repo.DestDir, "dest", "", "Destination directory (default: <dest_dir>/NAME)")
	cmd.Flags().StringSliceVar(&repo.Metadata, "metadata", nil, "Metadata kinds to fetch (default: all)")
	cmd.Flags().BoolVar(&repo.Local, "local", false, "Use the repository in place")
	cmd.Flags().BoolVar(&noChecksum, "no-checksum", false, "Skip checksum verification")

	return cmd
}

func newRepoRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a repository",
		Long:  "Remove a repository from the configuration. Synchronized files are kept.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runRepoRemove(args[0])
		},
	}
}

func newRepoListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured repositories",
		Long:  "List all configured repositories",
		RunE:  runRepoList,
	}
}

func newRepoEnableCmd(enabled bool) *cobra.Command {
	use, short := "enable NAME", "Enable a repository"
	if !enabled {
		use, short = "disable NAME", "Disable a repository"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runRepoEnable(args[0], enabled)
		},
	}
}

func newRepoImportCmd() *cobra.Command {
	var (
		vars    []string
		replace bool
	)

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import repositories from a .repo file",
		Long: `Import the sections of a yum .repo file as repositories.
$basearch and $releasever are taken from the running system unless
given with --var.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runRepoImport(args[0], vars, replace)
		},
	}

	cmd.Flags().StringArrayVar(&vars, "var", nil, "Variable as NAME=VALUE (repeatable)")
	cmd.Flags().BoolVar(&replace, "replace", false, "Replace repositories that already exist")

	return cmd
}

func runRepoAdd(repo *config.RepositoryConfig) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.AddRepository(repo); err != nil {
		return fmt.Errorf("failed to add repository: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := saveConfig(cfg); err != nil {
		return err
	}
	logger.Success("Repository added", logger.Fields{"name": repo.Name})
	return nil
}

func runRepoRemove(name string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.RemoveRepository(name) {
		return fmt.Errorf("failed to remove repository: %w", errors.ErrRepositoryNotFoundWithName(name))
	}
	if err := saveConfig(cfg); err != nil {
		return err
	}
	logger.Success("Repository removed", logger.Fields{"name": name})
	return nil
}

func runRepoEnable(name string, enabled bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.EnableRepository(name, enabled) {
		return errors.ErrRepositoryNotFoundWithName(name)
	}
	if err := saveConfig(cfg); err != nil {
		return err
	}
	logger.Success("Repository updated", logger.Fields{"name": name, "enabled": enabled})
	return nil
}

func runRepoList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(cfg.Repositories) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No repositories configured")
		return nil
	}

	tabWriter := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tabWriter, "NAME\tSTATUS\tMETADATA\tDEST\tSOURCE")
	for _, repo := range cfg.Repositories {
		metadata := "all"
		if len(repo.Metadata) > 0 {
			metadata = strings.Join(repo.Metadata, ",")
		}
		_, _ = fmt.Fprintf(tabWriter, "%s\t%s\t%s\t%s\t%s\n",
			repo.Name, repoStatus(repo), metadata, repo.DestDirIn(cfg.Settings), repoSource(repo))
	}
	_ = tabWriter.Flush()
	return nil
}

func runRepoImport(path string, rawVars []string, replace bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	vars := config.DefaultVars()
	for _, kv := range rawVars {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return fmt.Errorf("invalid variable %q, want NAME=VALUE: %w", kv, errors.ErrBadFuncArg)
		}
		vars[name] = value
	}

	repos, err := config.ImportRepoFile(path, vars)
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", path, err)
	}
	for _, repo := range repos {
		if replace {
			cfg.RemoveRepository(repo.Name)
		}
		if err := cfg.AddRepository(repo); err != nil {
			return fmt.Errorf("failed to import %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := saveConfig(cfg); err != nil {
		return err
	}
	logger.Success("Repositories imported", logger.Fields{"file": path, "count": len(repos)})
	return nil
}
