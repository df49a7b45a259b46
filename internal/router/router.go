package router

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"offline-gateway/internal/config"
	"offline-gateway/internal/interfaces"
	"offline-gateway/internal/metrics"
	"offline-gateway/internal/models"
)

// Router owns request classification and the cache namespace lifecycle. It
// is consulted for every GET the storefront issues; non-GET requests never
// reach it.
type Router struct {
	rules  []Rule
	engine *Engine
	cfg    *config.RouterConfig
	store  interfaces.Store
	logger *zap.Logger
}

// New creates a Router with the default classification table.
func New(store interfaces.Store, fetcher interfaces.Fetcher, cfg *config.RouterConfig, logger *zap.Logger) *Router {
	return &Router{
		rules:  DefaultRules(cfg),
		engine: NewEngine(store, fetcher, cfg, logger),
		cfg:    cfg,
		store:  store,
		logger: logger,
	}
}

// Route classifies the request and applies the matching strategy. A nil
// entry with a nil error means the request resolved to no response (the
// documented stale-while-revalidate edge case).
func (r *Router) Route(ctx context.Context, req *http.Request) (*models.CachedEntry, error) {
	rule := Classify(r.rules, req)
	return r.engine.Apply(ctx, rule, req)
}

// Install seeds the static namespace with the precache manifest. The seed
// is all-or-nothing: a partially populated static cache is worse than a
// failed install that will be retried, so the first failure aborts.
func (r *Router) Install(ctx context.Context) error {
	namespace := r.cfg.StaticNamespace()
	r.logger.Info("Installing static cache",
		zap.String("namespace", namespace),
		zap.Int("assets", len(r.cfg.PrecacheManifest)))

	for _, asset := range r.cfg.PrecacheManifest {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset, nil)
		if err != nil {
			return fmt.Errorf("precache %s: %w", asset, err)
		}

		entry, err := r.engine.fetch(req, StrategyCacheFirst)
		if err != nil {
			return fmt.Errorf("precache %s: %w", asset, err)
		}
		if !entry.OK() {
			return fmt.Errorf("precache %s: upstream returned status %d", asset, entry.Status)
		}

		if err := r.store.Put(ctx, namespace, RequestKey(req), entry); err != nil {
			return fmt.Errorf("precache %s: %w", asset, err)
		}
		metrics.PrecachedAssets.Inc()
	}

	r.logger.Info("Static cache installed", zap.String("namespace", namespace))
	return nil
}

// Activate deletes every namespace whose name is not one of the two current
// versioned names. After it returns the router serves all sessions
// immediately; there is no waiting for old sessions to drain.
func (r *Router) Activate(ctx context.Context) error {
	current := map[string]struct{}{
		r.cfg.StaticNamespace():  {},
		r.cfg.DynamicNamespace(): {},
	}

	names, err := r.store.Namespaces(ctx)
	if err != nil {
		return fmt.Errorf("list namespaces: %w", err)
	}

	for _, name := range names {
		if _, ok := current[name]; ok {
			continue
		}
		r.logger.Info("Purging stale cache namespace", zap.String("namespace", name))
		if err := r.store.DeleteNamespace(ctx, name); err != nil {
			return fmt.Errorf("delete namespace %s: %w", name, err)
		}
		metrics.NamespacePurges.Inc()
	}
	return nil
}

// WaitForRefreshes exposes the engine's detached-task barrier for tests.
func (r *Router) WaitForRefreshes() {
	r.engine.WaitForRefreshes()
}
