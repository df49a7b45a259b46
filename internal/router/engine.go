package router

import (
	"context"
	"io"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"offline-gateway/internal/config"
	"offline-gateway/internal/interfaces"
	"offline-gateway/internal/metrics"
	"offline-gateway/internal/models"
)

// Engine implements the three caching strategies against a namespace store
// and a network fetcher. Every strategy resolves to some response for the
// caller, with one documented exception: stale-while-revalidate with no
// cached entry and a failed network fetch yields no response at all.
type Engine struct {
	store   interfaces.Store
	fetcher interfaces.Fetcher
	cfg     *config.RouterConfig
	logger  *zap.Logger

	staticNS  string
	dynamicNS string

	// refreshes tracks detached stale-while-revalidate fetches. Callers
	// never wait on it; it exists so tests can synchronize with the
	// background write. Two racing refreshes of the same key are resolved
	// last-write-wins.
	refreshes sync.WaitGroup
}

// NewEngine creates a strategy engine bound to the configured namespace
// version.
func NewEngine(store interfaces.Store, fetcher interfaces.Fetcher, cfg *config.RouterConfig, logger *zap.Logger) *Engine {
	return &Engine{
		store:     store,
		fetcher:   fetcher,
		cfg:       cfg,
		logger:    logger,
		staticNS:  cfg.StaticNamespace(),
		dynamicNS: cfg.DynamicNamespace(),
	}
}

// resolve maps a namespace role to its versioned name.
func (e *Engine) resolve(role string) string {
	if role == models.NamespaceStatic {
		return e.staticNS
	}
	return e.dynamicNS
}

// Apply runs the rule's strategy for the request. A nil entry with a nil
// error is the undefined stale-while-revalidate outcome.
func (e *Engine) Apply(ctx context.Context, rule Rule, req *http.Request) (*models.CachedEntry, error) {
	key := RequestKey(req)
	namespace := e.resolve(rule.Namespace)
	metrics.RecordRequest(string(rule.Strategy))

	switch rule.Strategy {
	case StrategyCacheFirst:
		return e.cacheFirst(ctx, req, namespace, key), nil
	case StrategyNetworkFirst:
		return e.networkFirst(ctx, req, namespace, key, rule.HTMLFallback), nil
	default:
		return e.staleWhileRevalidate(ctx, req, namespace, key), nil
	}
}

// cacheFirst returns the cached entry when present without touching the
// network. On a miss it fetches, stores successful responses, and degrades
// to the synthetic offline response when the network fails too.
func (e *Engine) cacheFirst(ctx context.Context, req *http.Request, namespace, key string) *models.CachedEntry {
	if entry, ok := e.store.Match(ctx, namespace, key); ok {
		metrics.RecordCacheHit(string(StrategyCacheFirst), namespace)
		return entry
	}
	metrics.RecordCacheMiss(string(StrategyCacheFirst))

	entry, err := e.fetch(req, StrategyCacheFirst)
	if err != nil {
		e.logger.Warn("Cache-first fetch failed with no cached entry",
			zap.String("key", key), zap.Error(err))
		metrics.RecordOffline(string(StrategyCacheFirst))
		return models.OfflineEntry()
	}

	if entry.OK() {
		e.put(ctx, namespace, key, entry)
	}
	return entry
}

// networkFirst always tries the network and stores successful responses.
// On network failure it falls back to the cached entry, then (for HTML
// navigations) to the cached root document, then to the offline response.
func (e *Engine) networkFirst(ctx context.Context, req *http.Request, namespace, key string, htmlFallback bool) *models.CachedEntry {
	entry, err := e.fetch(req, StrategyNetworkFirst)
	if err == nil {
		if entry.OK() {
			e.put(ctx, namespace, key, entry)
		}
		return entry
	}

	e.logger.Debug("Network-first fetch failed, falling back to cache",
		zap.String("key", key), zap.Error(err))

	if cached, ok := e.store.Match(ctx, namespace, key); ok {
		metrics.RecordCacheHit(string(StrategyNetworkFirst), namespace)
		return cached
	}
	metrics.RecordCacheMiss(string(StrategyNetworkFirst))

	if htmlFallback {
		// Offline shell: the precached root document stands in for any
		// uncached page.
		if shell, ok := e.store.Match(ctx, e.staticNS, rootKey); ok {
			metrics.RecordCacheHit(string(StrategyNetworkFirst), e.staticNS)
			return shell
		}
	}

	metrics.RecordOffline(string(StrategyNetworkFirst))
	return models.OfflineEntry()
}

// staleWhileRevalidate returns the cached entry immediately and refreshes it
// in a detached task the caller does not wait for. With no cached entry the
// caller gets the in-flight network result; if that fails as well, the
// caller gets nothing. That nil return is intentional and is the one path
// without a guaranteed response.
func (e *Engine) staleWhileRevalidate(ctx context.Context, req *http.Request, namespace, key string) *models.CachedEntry {
	if cached, ok := e.store.Match(ctx, namespace, key); ok {
		metrics.RecordCacheHit(string(StrategyStaleWhileRevalidate), namespace)

		refresh := req.Clone(context.Background())
		e.refreshes.Add(1)
		go func() {
			defer e.refreshes.Done()
			entry, err := e.fetch(refresh, StrategyStaleWhileRevalidate)
			if err != nil {
				metrics.RecordRefresh("error")
				e.logger.Debug("Background refresh failed", zap.String("key", key), zap.Error(err))
				return
			}
			if entry.OK() {
				e.put(context.Background(), namespace, key, entry)
			}
			metrics.RecordRefresh("ok")
		}()

		return cached
	}
	metrics.RecordCacheMiss(string(StrategyStaleWhileRevalidate))

	entry, err := e.fetch(req, StrategyStaleWhileRevalidate)
	if err != nil {
		e.logger.Warn("Stale-while-revalidate fetch failed with no cached entry",
			zap.String("key", key), zap.Error(err))
		return nil
	}
	if entry.OK() {
		e.put(ctx, namespace, key, entry)
	}
	return entry
}

// WaitForRefreshes blocks until all detached refreshes have completed. Test
// synchronization only; production callers never wait.
func (e *Engine) WaitForRefreshes() {
	e.refreshes.Wait()
}

// fetch performs the network request and materializes the response.
func (e *Engine) fetch(req *http.Request, strategy Strategy) (*models.CachedEntry, error) {
	done := metrics.TimeFetch(string(strategy))
	defer done()

	ctx, cancel := context.WithTimeout(req.Context(), e.cfg.FetchTimeout)
	defer cancel()

	resp, err := e.fetcher.Do(req.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return models.NewCachedEntry(resp.StatusCode, resp.Header, body), nil
}

// put stores an entry, swallowing write failures: a full or broken store
// must never cost the caller a response it already has.
func (e *Engine) put(ctx context.Context, namespace, key string, entry *models.CachedEntry) {
	if err := e.store.Put(ctx, namespace, key, entry); err != nil {
		e.logger.Warn("Cache write failed",
			zap.String("namespace", namespace), zap.String("key", key), zap.Error(err))
	}
}
