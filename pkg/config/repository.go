package config

import (
	"path/filepath"

	"github.com/glorpus-work/yumsync/pkg/errors"
	"github.com/glorpus-work/yumsync/pkg/repomd"
	"github.com/glorpus-work/yumsync/pkg/yum"
)

// RepositoryConfig describes one repository to synchronize.
type RepositoryConfig struct {
	Name       string `yaml:"name"`
	BaseURL    string `yaml:"baseurl,omitempty"`
	MirrorList string `yaml:"mirrorlist,omitempty"`
	// Metadata lists repomd data types to fetch. Empty means all.
	Metadata []string `yaml:"metadata,omitempty"`
	// Checksum turns verification off when set to false.
	Checksum *bool `yaml:"checksum,omitempty"`
	// Local uses BaseURL in place instead of downloading it.
	Local   bool        `yaml:"local,omitempty"`
	DestDir string      `yaml:"dest_dir,omitempty"`
	Enabled *bool       `yaml:"enabled,omitempty"`
	Auth    *AuthConfig `yaml:"auth,omitempty"`
}

// IsEnabled reports whether the repository takes part in syncs. Repositories
// are enabled unless configured otherwise.
func (rc *RepositoryConfig) IsEnabled() bool {
	return rc.Enabled == nil || *rc.Enabled
}

// VerifyChecksums reports whether downloaded files are checked.
func (rc *RepositoryConfig) VerifyChecksums() bool {
	return rc.Checksum == nil || *rc.Checksum
}

// Kinds returns the requested metadata kinds.
func (rc *RepositoryConfig) Kinds() (repomd.Kinds, error) {
	return repomd.ParseKinds(rc.Metadata)
}

// DestDirIn returns where the repository is stored, given the shared
// settings: its own dest_dir or <settings.dest_dir>/<name>.
func (rc *RepositoryConfig) DestDirIn(s Settings) string {
	if rc.DestDir != "" {
		return rc.DestDir
	}
	return filepath.Join(s.DestDir, rc.Name)
}

// ToYumConfig builds the sync configuration of the repository.
func (rc *RepositoryConfig) ToYumConfig(s Settings) (*yum.Config, error) {
	kinds, err := rc.Kinds()
	if err != nil {
		return nil, errors.Wrapf(err, "repository %q", rc.Name)
	}
	cfg := &yum.Config{
		BaseURL:    rc.BaseURL,
		MirrorList: rc.MirrorList,
		DestDir:    rc.DestDirIn(s),
		Flags:      kinds,
		Local:      rc.Local,
	}
	if rc.VerifyChecksums() {
		cfg.Checks = yum.CheckChecksum
	}
	return cfg, nil
}

// AddRepository adds a repository to the configuration.
// Returns an error if a repository with the same name already exists.
func (c *Config) AddRepository(rc *RepositoryConfig) error {
	if rc == nil || rc.Name == "" {
		return errors.ErrEmptyRepositoryName
	}
	if c.GetRepository(rc.Name) != nil {
		return errors.ErrRepositoryExistsWithName(rc.Name)
	}
	c.Repositories = append(c.Repositories, rc)
	return nil
}

// RemoveRepository removes a repository from the configuration.
func (c *Config) RemoveRepository(name string) bool {
	for i, repo := range c.Repositories {
		if repo.Name == name {
			c.Repositories = append(c.Repositories[:i], c.Repositories[i+1:]...)
			return true
		}
	}
	return false
}

// GetRepository gets a repository configuration by name.
func (c *Config) GetRepository(name string) *RepositoryConfig {
	for _, repo := range c.Repositories {
		if repo.Name == name {
			return repo
		}
	}
	return nil
}

// EnableRepository enables or disables a repository.
func (c *Config) EnableRepository(name string, enabled bool) bool {
	repo := c.GetRepository(name)
	if repo == nil {
		return false
	}
	repo.Enabled = &enabled
	return true
}

// SelectRepositories returns the named repositories in configuration order,
// or every enabled repository when names is empty. Naming a disabled
// repository selects it.
func (c *Config) SelectRepositories(names ...string) ([]*RepositoryConfig, error) {
	if len(names) == 0 {
		var out []*RepositoryConfig
		for _, repo := range c.Repositories {
			if repo.IsEnabled() {
				out = append(out, repo)
			}
		}
		return out, nil
	}

	want := make(map[string]bool, len(names))
	for _, n := range names {
		if c.GetRepository(n) == nil {
			return nil, errors.ErrRepositoryNotFoundWithName(n)
		}
		want[n] = true
	}
	out := make([]*RepositoryConfig, 0, len(names))
	for _, repo := range c.Repositories {
		if want[repo.Name] {
			out = append(out, repo)
		}
	}
	return out, nil
}
