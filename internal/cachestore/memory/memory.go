package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/allegro/bigcache/v3"
	"go.uber.org/zap"

	"offline-gateway/internal/config"
	"offline-gateway/internal/interfaces"
	"offline-gateway/internal/models"
)

// Ensure Store implements interfaces.Store
var _ interfaces.Store = (*Store)(nil)

// Store implements the namespace store in memory, one BigCache instance per
// namespace. Deleting a namespace drops the whole instance, which is the
// only eviction path; entries never expire individually.
type Store struct {
	mu         sync.RWMutex
	namespaces map[string]*bigcache.BigCache
	sizeMB     int
	logger     *zap.Logger
}

// NewStore creates a new in-memory namespace store.
func NewStore(cfg *config.MemoryStoreConfig, logger *zap.Logger) *Store {
	return &Store{
		namespaces: make(map[string]*bigcache.BigCache),
		sizeMB:     cfg.SizeMB,
		logger:     logger,
	}
}

// open returns the cache backing a namespace, creating it if needed.
func (s *Store) open(ctx context.Context, namespace string) (*bigcache.BigCache, error) {
	s.mu.RLock()
	cache, ok := s.namespaces[namespace]
	s.mu.RUnlock()
	if ok {
		return cache, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cache, ok := s.namespaces[namespace]; ok {
		return cache, nil
	}

	// Entries live until the namespace is deleted, so the life window is
	// effectively unbounded and the cleanup sweep is disabled.
	cacheCfg := bigcache.DefaultConfig(24 * 365 * time.Hour)
	cacheCfg.HardMaxCacheSize = s.sizeMB
	cacheCfg.CleanWindow = 0
	cacheCfg.Verbose = false

	cache, err := bigcache.New(ctx, cacheCfg)
	if err != nil {
		return nil, err
	}
	s.namespaces[namespace] = cache
	s.logger.Debug("Opened cache namespace", zap.String("namespace", namespace))
	return cache, nil
}

// Match retrieves the entry stored under key in the given namespace.
func (s *Store) Match(ctx context.Context, namespace, key string) (*models.CachedEntry, bool) {
	s.mu.RLock()
	cache, ok := s.namespaces[namespace]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	data, err := cache.Get(key)
	if err != nil {
		return nil, false
	}

	var entry models.CachedEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		s.logger.Warn("Failed to unmarshal cache entry",
			zap.String("namespace", namespace), zap.String("key", key), zap.Error(err))
		_ = cache.Delete(key) // Remove corrupted entry
		return nil, false
	}

	return &entry, true
}

// Put stores an entry under key, creating the namespace on first write.
func (s *Store) Put(ctx context.Context, namespace, key string, entry *models.CachedEntry) error {
	cache, err := s.open(ctx, namespace)
	if err != nil {
		return err
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return cache.Set(key, data)
}

// DeleteNamespace removes a namespace and every entry in it.
func (s *Store) DeleteNamespace(ctx context.Context, namespace string) error {
	s.mu.Lock()
	cache, ok := s.namespaces[namespace]
	if ok {
		delete(s.namespaces, namespace)
	}
	s.mu.Unlock()

	if !ok {
		return nil
	}
	return cache.Close()
}

// Namespaces lists the names of all existing namespaces.
func (s *Store) Namespaces(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.namespaces))
	for name := range s.namespaces {
		names = append(names, name)
	}
	return names, nil
}

// Close releases every namespace.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for name, cache := range s.namespaces {
		if err := cache.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(s.namespaces, name)
	}
	return firstErr
}
