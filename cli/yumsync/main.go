package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/glorpus-work/yumsync/internal/cli"
	"github.com/glorpus-work/yumsync/internal/logger"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := newRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	_ = logger.CloseFile()
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "yumsync",
		Short: "Synchronize yum repository metadata",
		Long: `yumsync mirrors the metadata of yum/rpm repositories:
- sync: fetch repomd.xml and the selected metadata files from a base URL,
  a mirrorlist or a metalink, verifying checksums
- inspect: verify a repository on disk
- repo, config: manage the repositories and settings to synchronize`,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: auto-detect)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	cli.ConfigPath = &configPath
	cli.Verbose = &verbose

	cmd.AddCommand(
		cli.NewSyncCmd(),
		cli.NewInspectCmd(),
		cli.NewExtractCmd(),
		cli.NewRepoCmd(),
		cli.NewConfigCmd(),
		cli.NewVersionCmd(),
	)

	return cmd
}
