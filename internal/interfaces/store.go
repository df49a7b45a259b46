package interfaces

import (
	"context"

	"offline-gateway/internal/models"
)

//go:generate mockgen -package=mock -source=store.go -destination=mock/store.go

// Store is a namespace-partitioned request/response cache. A namespace is a
// named, isolated set of key → entry pairs; eviction is whole-namespace only
// (DeleteNamespace), there is no per-entry TTL or LRU bound.
type Store interface {
	// Match retrieves the entry stored under key in the given namespace.
	Match(ctx context.Context, namespace, key string) (*models.CachedEntry, bool)

	// Put stores an entry under key in the given namespace, creating the
	// namespace if it does not exist yet. Overwrites any previous entry.
	Put(ctx context.Context, namespace, key string, entry *models.CachedEntry) error

	// DeleteNamespace removes a namespace and every entry in it.
	DeleteNamespace(ctx context.Context, namespace string) error

	// Namespaces lists the names of all existing namespaces.
	Namespaces(ctx context.Context) ([]string, error)

	// Close releases any resources held by the store.
	Close() error
}
