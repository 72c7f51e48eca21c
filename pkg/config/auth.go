package config

import (
	"github.com/glorpus-work/yumsync/pkg/auth"
	"github.com/glorpus-work/yumsync/pkg/errors"
)

// AuthConfig holds the credentials of a repository. At most one scheme is
// used; basic wins over header, header over bearer.
type AuthConfig struct {
	BasicAuth  *BasicAuth  `yaml:"basic,omitempty"`
	HeaderAuth *HeaderAuth `yaml:"header,omitempty"`
	BearerAuth *BearerAuth `yaml:"bearer,omitempty"`
}

// BasicAuth holds configuration for HTTP Basic Authentication.
type BasicAuth struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// HeaderAuth holds configuration for custom header-based authentication.
type HeaderAuth struct {
	Headers map[string]string `yaml:"headers"`
}

// BearerAuth holds configuration for Bearer token authentication.
type BearerAuth struct {
	Token string `yaml:"token"`
}

// ToAuthenticator returns the configured authenticator, or nil.
func (a *AuthConfig) ToAuthenticator() auth.Authenticator {
	switch {
	case a == nil:
		return nil
	case a.BasicAuth != nil:
		return auth.BasicAuth{Username: a.BasicAuth.Username, Password: a.BasicAuth.Password}
	case a.HeaderAuth != nil:
		return auth.HeaderAuth{Headers: a.HeaderAuth.Headers}
	case a.BearerAuth != nil:
		return auth.BearerAuth{Token: a.BearerAuth.Token}
	default:
		return nil
	}
}

// ToAuthSet scopes the credentials of every repository to its baseurl and
// mirrorlist. Mirrors found through a mirrorlist get no credentials.
func (c *Config) ToAuthSet() (*auth.Set, error) {
	set := &auth.Set{}
	for _, repo := range c.Repositories {
		a := repo.Auth.ToAuthenticator()
		if a == nil {
			continue
		}
		for _, prefix := range []string{repo.BaseURL, repo.MirrorList} {
			if prefix == "" {
				continue
			}
			if err := set.Add(prefix, a); err != nil {
				return nil, errors.Wrapf(errors.ErrConfigValidation, "repository %q: auth scope %q: %v", repo.Name, prefix, err)
			}
		}
	}
	return set, nil
}
