package cli

import (
	"fmt"

	"github.com/glorpus-work/yumsync/internal/logger"
	"github.com/glorpus-work/yumsync/pkg/config"
	"github.com/glorpus-work/yumsync/pkg/download"
	"github.com/glorpus-work/yumsync/pkg/fsutil"
	"github.com/glorpus-work/yumsync/pkg/hooks"
)

// These variables will be set by the main package
var (
	ConfigPath *string
	Verbose    *bool
)

// Rotation of the optional log file.
const (
	logFileMaxSizeMB  = 10
	logFileMaxBackups = 3
	logFileMaxAgeDays = 28
)

func getConfigPath() (string, error) {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath, nil
	}
	path, err := fsutil.GetDefaultConfigPath()
	if err != nil {
		return "", fmt.Errorf("failed to get default config path: %w", err)
	}
	return path, nil
}

// loadConfig reads the configuration and sets up logging from it.
func loadConfig() (*config.Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if Verbose != nil && *Verbose {
		cfg.Settings.LogLevel = "debug"
	}
	if err := setupLogger(cfg.Settings); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogger(s config.Settings) error {
	logger.InitLogger(s.LogLevel, logger.OutputFormat(s.LogFormat))
	if err := logger.EnableFile(logger.FileOptions{
		Filename:   s.LogFile,
		MaxSize:    logFileMaxSizeMB,
		MaxBackups: logFileMaxBackups,
		MaxAge:     logFileMaxAgeDays,
		Compress:   true,
	}); err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	return nil
}

// loadDownloadManager builds the HTTP downloader with the credentials of
// every configured repository.
func loadDownloadManager(cfg *config.Config) (*download.ManagerImpl, error) {
	set, err := cfg.ToAuthSet()
	if err != nil {
		return nil, err
	}
	dl := download.NewManager(cfg.Settings.HTTPTimeout, cfg.Settings.UserAgent).
		WithOptions(download.Options{Concurrency: cfg.Settings.MaxParallel}).
		WithAuth(set)
	return dl, nil
}

// loadScripts loads the post_sync_hook setting and, when given, the hook
// scripts found in dir.
func loadScripts(cfg *config.Config, dir string) (*hooks.TengoExecutor, error) {
	scripts := hooks.NewTengoExecutor()
	if dir != "" {
		if err := hooks.LoadDir(scripts, dir); err != nil {
			return nil, fmt.Errorf("failed to load hooks: %w", err)
		}
	}
	if cfg.Settings.PostSyncHook != "" {
		if err := hooks.LoadFile(scripts, hooks.PostSync, cfg.Settings.PostSyncHook); err != nil {
			return nil, fmt.Errorf("failed to load post-sync hook: %w", err)
		}
	}
	return scripts, nil
}
