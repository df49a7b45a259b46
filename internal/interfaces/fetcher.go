package interfaces

import "net/http"

//go:generate mockgen -package=mock -source=fetcher.go -destination=mock/fetcher.go

// Fetcher performs a network request on behalf of a caching strategy.
// Implementations must honor the request context for timeouts.
type Fetcher interface {
	Do(req *http.Request) (*http.Response, error)
}
