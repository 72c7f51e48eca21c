package auth_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/glorpus-work/yumsync/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicAuth(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		expected string
	}{
		{
			name:     "valid credentials",
			username: "user",
			password: "pass",
			expected: "Basic dXNlcjpwYXNz",
		},
		{
			name:     "empty credentials",
			expected: "Basic Og==",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "https://cdn.redhat.test/content", nil)
			basicAuth := auth.BasicAuth{Username: tt.username, Password: tt.password}

			require.NoError(t, basicAuth.Apply(req))
			assert.Equal(t, tt.expected, req.Header.Get("Authorization"))
			assert.Equal(t, auth.BasicAuthType, basicAuth.Type())
		})
	}
}

func TestHeaderAuth(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "https://cdn.test/repo", nil)
	headerAuth := auth.HeaderAuth{Headers: map[string]string{
		"X-API-Key":   "test-key",
		"X-Client-ID": "client-123",
	}}

	require.NoError(t, headerAuth.Apply(req))
	assert.Equal(t, "test-key", req.Header.Get("X-Api-Key"))
	assert.Equal(t, "client-123", req.Header.Get("X-Client-Id"))
	assert.Equal(t, auth.HeaderAuthType, headerAuth.Type())
}

func TestBearerAuth(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "https://cdn.test/repo", nil)
	bearerAuth := auth.BearerAuth{Token: "test-token-123"}

	require.NoError(t, bearerAuth.Apply(req))
	assert.Equal(t, "Bearer test-token-123", req.Header.Get("Authorization"))
	assert.Equal(t, auth.BearerAuthType, bearerAuth.Type())
}

func TestSet_Match(t *testing.T) {
	repo := auth.BearerAuth{Token: "repo"}
	updates := auth.BearerAuth{Token: "updates"}
	host := auth.BasicAuth{Username: "u"}

	var set auth.Set
	require.NoError(t, set.Add("https://cdn.test/content/repo/", repo))
	require.NoError(t, set.Add("https://cdn.test/content/repo/updates", updates))
	require.NoError(t, set.Add("http://other.test", host))
	assert.Equal(t, 3, set.Len())

	tests := []struct {
		url  string
		want auth.Authenticator
	}{
		{url: "https://cdn.test/content/repo/repodata/repomd.xml", want: repo},
		{url: "https://cdn.test/content/repo", want: repo},
		{url: "https://CDN.test/content/repo/updates/repodata/repomd.xml", want: updates},
		{url: "https://cdn.test/content/repository/repodata/repomd.xml", want: nil},
		{url: "http://cdn.test/content/repo/repodata/repomd.xml", want: nil},
		{url: "http://other.test/anything", want: host},
		{url: "https://mirror.test/content/repo/repodata/repomd.xml", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			u, err := url.Parse(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, set.Match(u))
		})
	}
}

func TestSet_AddReplaces(t *testing.T) {
	var set auth.Set
	require.NoError(t, set.Add("https://cdn.test/repo", auth.BearerAuth{Token: "old"}))
	require.NoError(t, set.Add("https://cdn.test/repo/", auth.BearerAuth{Token: "new"}))
	assert.Equal(t, 1, set.Len())

	req, _ := http.NewRequest(http.MethodGet, "https://cdn.test/repo/repodata/repomd.xml", nil)
	require.NoError(t, set.Apply(req))
	assert.Equal(t, "Bearer new", req.Header.Get("Authorization"))
}

func TestSet_NilAndEmpty(t *testing.T) {
	var nilSet *auth.Set
	u, _ := url.Parse("https://cdn.test/repo")
	assert.Nil(t, nilSet.Match(u))
	assert.Zero(t, nilSet.Len())

	var set auth.Set
	req, _ := http.NewRequest(http.MethodGet, "https://cdn.test/repo", nil)
	require.NoError(t, set.Apply(req))
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestSet_AddInvalidPrefix(t *testing.T) {
	var set auth.Set
	assert.Error(t, set.Add("://bad", auth.BearerAuth{}))
}
