package router

import (
	"net/http"
	"net/url"

	"offline-gateway/internal/interfaces"
)

// Ensure UpstreamFetcher implements interfaces.Fetcher
var _ interfaces.Fetcher = (*UpstreamFetcher)(nil)

// UpstreamFetcher resolves requests against the storefront upstream and
// performs them with a shared HTTP client.
type UpstreamFetcher struct {
	base   *url.URL
	client *http.Client
}

// NewUpstreamFetcher creates a fetcher rooted at the upstream base URL.
func NewUpstreamFetcher(base *url.URL, client *http.Client) *UpstreamFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &UpstreamFetcher{base: base, client: client}
}

// Do rewrites the request to the upstream origin and executes it. The
// incoming request is cloned, never mutated.
func (f *UpstreamFetcher) Do(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.URL.Scheme = f.base.Scheme
	out.URL.Host = f.base.Host
	out.Host = f.base.Host
	out.RequestURI = ""
	return f.client.Do(out)
}
