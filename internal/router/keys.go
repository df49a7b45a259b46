package router

import "net/http"

// RequestKey builds the cache key for a request: method plus path and query.
// Keys are origin-relative so precached entries match regardless of which
// host name reached the gateway. Fragments never reach the server.
func RequestKey(req *http.Request) string {
	path := req.URL.Path
	if path == "" {
		path = "/"
	}
	key := req.Method + " " + path
	if req.URL.RawQuery != "" {
		key += "?" + req.URL.RawQuery
	}
	return key
}

// rootKey is the key of the precached root document, the generic offline
// shell served when an HTML navigation misses both network and cache.
const rootKey = "GET /"
