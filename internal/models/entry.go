package models

import (
	"net/http"
	"time"
)

// Namespace role names. The versioned namespace name is derived by the
// router from these prefixes plus the configured cache version.
const (
	NamespaceStatic  = "static"
	NamespaceDynamic = "dynamic"
)

// CachedEntry is a stored copy of an upstream response: status line, headers
// and body, plus the time it was written. Entries carry no per-entry TTL;
// eviction happens only by deleting the whole namespace.
type CachedEntry struct {
	Status   int                 `json:"status"`
	Headers  map[string][]string `json:"headers,omitempty"`
	Body     []byte              `json:"body"`
	StoredAt int64               `json:"stored_at"`
}

// NewCachedEntry copies the cacheable parts of an upstream response.
func NewCachedEntry(status int, headers http.Header, body []byte) *CachedEntry {
	h := make(map[string][]string, len(headers))
	for k, v := range headers {
		h[k] = append([]string(nil), v...)
	}
	return &CachedEntry{
		Status:   status,
		Headers:  h,
		Body:     body,
		StoredAt: time.Now().Unix(),
	}
}

// OK reports whether the stored status is a success or redirect, i.e. a
// response worth caching in the first place.
func (e *CachedEntry) OK() bool {
	return e.Status >= 200 && e.Status < 400
}

// Header returns the stored headers as an http.Header.
func (e *CachedEntry) Header() http.Header {
	return http.Header(e.Headers)
}

// OfflineEntry is the synthetic response produced when neither cache nor
// network can satisfy a request. Callers always receive a response, never a
// transport error.
func OfflineEntry() *CachedEntry {
	return &CachedEntry{
		Status:   http.StatusServiceUnavailable,
		Headers:  map[string][]string{"Content-Type": {"text/plain; charset=utf-8"}},
		Body:     []byte("Offline"),
		StoredAt: time.Now().Unix(),
	}
}
