package util

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func proxyOf(t *testing.T, fn func(*http.Request) (*url.URL, error), rawURL string) string {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	require.NoError(t, err)
	u, err := fn(req)
	require.NoError(t, err)
	if u == nil {
		return ""
	}
	return u.String()
}

func TestNewProxyFunc(t *testing.T) {
	t.Setenv("HTTP_PROXY", "")
	t.Setenv("HTTPS_PROXY", "")
	t.Setenv("NO_PROXY", "")

	fn := NewProxyFunc("http://plain:3128", "http://secure:3128", "localhost,.internal")

	assert.Equal(t, "http://plain:3128", proxyOf(t, fn, "http://api.example.com/v1"))
	assert.Equal(t, "http://secure:3128", proxyOf(t, fn, "https://api.example.com/v1"))
	assert.Equal(t, "", proxyOf(t, fn, "https://catalog.internal/discs.json"))
	assert.Equal(t, "", proxyOf(t, fn, "http://localhost:11434/api/generate"))
}

func TestNewProxyFunc_NoProxyOnly(t *testing.T) {
	t.Setenv("HTTP_PROXY", "http://env:8080")
	t.Setenv("HTTPS_PROXY", "")
	t.Setenv("NO_PROXY", "")

	fn := NewProxyFunc("", "", "api.example.com")
	assert.Equal(t, "", proxyOf(t, fn, "http://api.example.com/v1"))
	assert.Equal(t, "http://env:8080", proxyOf(t, fn, "http://other.example.com/v1"))
}
