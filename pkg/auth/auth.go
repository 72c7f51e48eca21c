// Package auth applies repository credentials to outgoing HTTP requests.
// Credentials are scoped to URL prefixes so that a mirror picked from a
// mirrorlist never receives the credentials of the repository's base URL.
package auth

import (
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
)

// Authenticator decorates a request with credentials.
type Authenticator interface {
	Apply(req *http.Request) error
	Type() Type
}

// Type names an authentication scheme.
type Type string

// Authentication types.
const (
	BasicAuthType  Type = "basic"
	HeaderAuthType Type = "header"
	BearerAuthType Type = "bearer"
)

// BasicAuth sends HTTP basic credentials, as yum's username/password options do.
type BasicAuth struct {
	Username string
	Password string
}

// Apply sets the Authorization header.
func (b BasicAuth) Apply(req *http.Request) error {
	req.SetBasicAuth(b.Username, b.Password)
	return nil
}

// Type returns BasicAuthType.
func (b BasicAuth) Type() Type { return BasicAuthType }

// HeaderAuth sends arbitrary headers, e.g. CDN tokens.
type HeaderAuth struct {
	Headers map[string]string
}

// Apply sets every configured header.
func (h HeaderAuth) Apply(req *http.Request) error {
	for k, v := range h.Headers {
		req.Header.Set(k, v)
	}
	return nil
}

// Type returns HeaderAuthType.
func (h HeaderAuth) Type() Type { return HeaderAuthType }

// BearerAuth sends a bearer token.
type BearerAuth struct {
	Token string
}

// Apply sets the Authorization header.
func (b BearerAuth) Apply(req *http.Request) error {
	req.Header.Set("Authorization", "Bearer "+b.Token)
	return nil
}

// Type returns BearerAuthType.
func (b BearerAuth) Type() Type { return BearerAuthType }

type scoped struct {
	scheme, host, path string
	auth               Authenticator
}

// Set maps URL prefixes to authenticators. The zero value is empty and
// ready to use. A Set is safe for concurrent use.
type Set struct {
	mu     sync.RWMutex
	scopes []scoped
}

// Add registers a for every URL below prefix. Scheme and host must match
// exactly; the path must match on a segment boundary. Adding the same
// prefix twice replaces the earlier authenticator.
func (s *Set) Add(prefix string, a Authenticator) error {
	u, err := url.Parse(prefix)
	if err != nil {
		return err
	}
	sc := scoped{
		scheme: strings.ToLower(u.Scheme),
		host:   strings.ToLower(u.Host),
		path:   strings.TrimSuffix(u.Path, "/"),
		auth:   a,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, cur := range s.scopes {
		if cur.scheme == sc.scheme && cur.host == sc.host && cur.path == sc.path {
			s.scopes[i] = sc
			return nil
		}
	}
	s.scopes = append(s.scopes, sc)
	// longest path first so the most specific scope wins
	sort.SliceStable(s.scopes, func(i, j int) bool {
		return len(s.scopes[i].path) > len(s.scopes[j].path)
	})
	return nil
}

// Len returns the number of registered scopes.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.scopes)
}

// Match returns the authenticator of the most specific scope containing u,
// or nil.
func (s *Set) Match(u *url.URL) Authenticator {
	if s == nil || u == nil {
		return nil
	}
	scheme, host := strings.ToLower(u.Scheme), strings.ToLower(u.Host)

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sc := range s.scopes {
		if sc.scheme != scheme || sc.host != host {
			continue
		}
		if sc.path == "" || u.Path == sc.path || strings.HasPrefix(u.Path, sc.path+"/") {
			return sc.auth
		}
	}
	return nil
}

// Apply decorates req with the matching authenticator, if any.
func (s *Set) Apply(req *http.Request) error {
	a := s.Match(req.URL)
	if a == nil {
		return nil
	}
	return a.Apply(req)
}
