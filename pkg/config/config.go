// Package config loads and saves the yumsync configuration: the repositories
// to synchronize and the settings shared by every sync. Configuration lives
// in a YAML file; yum .repo files can be imported into it.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glorpus-work/yumsync/pkg/errors"
	"github.com/glorpus-work/yumsync/pkg/fsutil"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Repositories []*RepositoryConfig `yaml:"repositories"`
	Settings     Settings            `yaml:"settings"`
}

// Settings are shared by every repository.
type Settings struct {
	// DestDir is the parent of the per-repository destination directories.
	DestDir string `yaml:"dest_dir,omitempty"`

	// Network settings
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	MaxParallel int           `yaml:"max_parallel"`
	UserAgent   string        `yaml:"user_agent,omitempty"`

	// MaxParallelRepos bounds how many repositories sync at once. Each of
	// them may open up to MaxParallel connections.
	MaxParallelRepos int `yaml:"max_parallel_repos"`

	// Logging settings
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // text, json
	LogFile   string `yaml:"log_file,omitempty"`

	// PostSyncHook is a tengo script run after every successful sync.
	PostSyncHook string `yaml:"post_sync_hook,omitempty"`
}

// Default configuration values.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultMaxParallel is the default number of concurrent downloads.
	DefaultMaxParallel = 5

	// DefaultMaxParallelRepos is the default number of repositories synced
	// at once.
	DefaultMaxParallelRepos = 1

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	destDir, err := fsutil.GetCacheDir()
	if err != nil {
		destDir = filepath.Join(os.TempDir(), fsutil.AppName)
	} else {
		destDir = filepath.Join(destDir, "repos")
	}

	return &Config{
		Repositories: []*RepositoryConfig{},
		Settings: Settings{
			DestDir:     destDir,
			HTTPTimeout: DefaultHTTPTimeout,
			MaxParallel: DefaultMaxParallel,
			LogLevel:    "info",
			LogFormat:   "text",

			MaxParallelRepos: DefaultMaxParallelRepos,
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the
// default configuration.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrConfigValidation, err)
	}

	return &config, nil
}

// SaveConfig writes the configuration to path atomically.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	if err := fsutil.EnsureDir(filepath.Dir(absPath)); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(YAMLIndent)
	if err := encoder.Encode(c); err != nil {
		return errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	if err := encoder.Close(); err != nil {
		return errors.Wrap(errors.ErrConfigEncode, err.Error())
	}

	// the file may carry repository credentials
	if err := fsutil.WriteFileAtomic(absPath, buf.Bytes(), fsutil.FileModeSecure); err != nil {
		return errors.Wrap(errors.ErrConfigFileRename, err.Error())
	}
	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	return data, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	if err := validateRepositories(c.Repositories); err != nil {
		return err
	}
	return validateSettings(c.Settings)
}

func validateRepositories(repos []*RepositoryConfig) error {
	repoNames := make(map[string]bool)
	for i, repo := range repos {
		if repo == nil || repo.Name == "" {
			return errors.ErrEmptyRepositoryNameWithIndex(i)
		}
		if repo.BaseURL == "" && repo.MirrorList == "" {
			return errors.ErrRepositoryURLEmptyWithName(repo.Name)
		}
		if repoNames[repo.Name] {
			return errors.ErrRepositoryExistsWithName(repo.Name)
		}
		if _, err := repo.Kinds(); err != nil {
			return errors.Wrapf(err, "repository %q", repo.Name)
		}
		repoNames[repo.Name] = true
	}
	return nil
}

func validateSettings(s Settings) error {
	if s.HTTPTimeout < 0 {
		return errors.ErrHTTPTimeoutNegative
	}
	if s.MaxParallel < 1 {
		return errors.ErrMaxParallelInvalid
	}
	if s.MaxParallelRepos < 1 {
		return errors.ErrMaxParallelReposInvalid
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(s.LogLevel)] {
		return errors.ErrInvalidLogLevelWithDetails(s.LogLevel)
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[s.LogFormat] {
		return errors.Wrapf(errors.ErrConfigValidation, "invalid log format %q, must be text or json", s.LogFormat)
	}
	return nil
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Settings.DestDir == "" {
		c.Settings.DestDir = defaults.Settings.DestDir
	}
	if c.Settings.HTTPTimeout == 0 {
		c.Settings.HTTPTimeout = defaults.Settings.HTTPTimeout
	}
	if c.Settings.MaxParallel == 0 {
		c.Settings.MaxParallel = defaults.Settings.MaxParallel
	}
	if c.Settings.MaxParallelRepos == 0 {
		c.Settings.MaxParallelRepos = defaults.Settings.MaxParallelRepos
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
	if c.Settings.LogFormat == "" {
		c.Settings.LogFormat = defaults.Settings.LogFormat
	}
}
