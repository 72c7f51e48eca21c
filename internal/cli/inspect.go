package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/glorpus-work/yumsync/internal/logger"
	"github.com/glorpus-work/yumsync/pkg/archive"
	"github.com/glorpus-work/yumsync/pkg/download"
	"github.com/glorpus-work/yumsync/pkg/errors"
	"github.com/glorpus-work/yumsync/pkg/repomd"
	"github.com/glorpus-work/yumsync/pkg/yum"
	"github.com/spf13/cobra"
)

// NewInspectCmd creates the inspect command.
func NewInspectCmd() *cobra.Command {
	var metadata []string

	cmd := &cobra.Command{
		Use:   "inspect DIR",
		Short: "Verify a local repository",
		Long: `Verify every metadata file of a local repository against its
repomd.xml, including the checksums of the decompressed content.
All files are checked; the command fails if any of them does not match.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0], metadata)
		},
	}

	cmd.Flags().StringSliceVar(&metadata, "metadata", nil, "Metadata kinds to check (default: all)")

	return cmd
}

// Number of arguments expected by the extract command.
const extractCommandArgs = 3

// NewExtractCmd creates the extract command.
func NewExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract DIR KIND OUTPUT",
		Short: "Write a decompressed metadata file",
		Long:  "Decompress the metadata file of KIND from the local repository in DIR into OUTPUT",
		Args:  cobra.ExactArgs(extractCommandArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, args[0], args[1], args[2])
		},
	}

	return cmd
}

// locateLocal resolves the metadata files of the repository in dir without
// downloading or verifying anything.
func locateLocal(ctx context.Context, dir string, kinds repomd.Kinds) (*yum.Result, error) {
	syncer := yum.NewSyncer(download.NewManager(0, ""), logger.GetLogger())
	result := &yum.Result{}
	cfg := &yum.Config{BaseURL: dir, DestDir: dir, Flags: kinds, Local: true}
	if err := syncer.Perform(ctx, cfg, result); err != nil {
		return nil, fmt.Errorf("failed to read repository %s: %w", dir, err)
	}
	return result, nil
}

func runInspect(cmd *cobra.Command, dir string, metadata []string) error {
	if _, err := loadConfig(); err != nil {
		return err
	}
	kinds, err := repomd.ParseKinds(metadata)
	if err != nil {
		return err
	}
	result, err := locateLocal(cmd.Context(), dir, kinds)
	if err != nil {
		return err
	}

	reports := yum.Inspect(cmd.Context(), result.Repo, result.Repomd, archive.NewManager())
	printReports(cmd.OutOrStdout(), result.Repomd.Revision, reports)

	failed := 0
	for _, r := range reports {
		if !r.OK() {
			failed++
		}
	}
	if failed > 0 {
		return errors.Wrapf(errors.ErrBadChecksum, "%d of %d files failed verification", failed, len(reports))
	}
	logger.Success("Repository verified", logger.Fields{"path": dir, "files": len(reports)})
	return nil
}

func printReports(w io.Writer, revision string, reports []yum.FileReport) {
	_, _ = fmt.Fprintf(w, "Revision: %s\n\n", valueOr(revision, "-"))
	tabWriter := tabwriter.NewWriter(w, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tabWriter, "KIND\tSIZE\tCHECKSUM\tOPEN-CHECKSUM\tPATH")
	for _, r := range reports {
		size := "missing"
		if r.Size >= 0 {
			size = fmt.Sprintf("%d", r.Size)
		}
		_, _ = fmt.Fprintf(tabWriter, "%s\t%s\t%s\t%s\t%s\n",
			r.Kind, size,
			checkStatus(r.ChecksumChecked, r.Checksum),
			checkStatus(r.OpenChecksumChecked, r.OpenChecksum),
			r.Path)
	}
	_ = tabWriter.Flush()
}

func checkStatus(checked bool, err error) string {
	switch {
	case err != nil:
		return "FAILED"
	case checked:
		return "ok"
	default:
		return "-"
	}
}

func runExtract(cmd *cobra.Command, dir, kindName, output string) error {
	if _, err := loadConfig(); err != nil {
		return err
	}
	kind, ok := repomd.KindFromName(kindName)
	if !ok {
		return errors.ErrUnknownKindWithName(kindName)
	}
	result, err := locateLocal(cmd.Context(), dir, repomd.Kinds(0).With(kind))
	if err != nil {
		return err
	}
	src := result.Repo.Path(kind)
	if src == "" {
		return fmt.Errorf("repository %s has no %s metadata: %w", dir, kindName, errors.ErrIO)
	}

	if err := archive.NewManager().Decompress(cmd.Context(), src, output); err != nil {
		return fmt.Errorf("failed to extract %s: %w", kindName, err)
	}
	logger.Success("Metadata extracted", logger.Fields{"kind": kindName, "path": output})
	return nil
}
