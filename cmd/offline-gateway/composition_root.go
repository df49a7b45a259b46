package main

import (
	"fmt"
	"net/http"
	"net/url"
	"os"

	"go.uber.org/zap"

	"offline-gateway/internal/backend"
	"offline-gateway/internal/cachestore/memory"
	redisstore "offline-gateway/internal/cachestore/redis"
	"offline-gateway/internal/config"
	"offline-gateway/internal/httpserver"
	"offline-gateway/internal/interfaces"
	"offline-gateway/internal/platform"
	"offline-gateway/internal/push"
	"offline-gateway/internal/router"
)

// CompositionRoot holds all application dependencies and provides a
// centralized place for dependency injection and service initialization.
type CompositionRoot struct {
	Config *config.Config
	Logger *zap.Logger

	Store   interfaces.Store
	Fetcher interfaces.Fetcher
	Router  *router.Router
	Manager *push.Manager

	HTTPServer *httpserver.Server
}

// NewCompositionRoot creates and initializes all application dependencies.
//
// Initialization order:
//  1. Logger (needed by all other components)
//  2. Configuration
//  3. Cache store backend (memory or redis)
//  4. Cache router (install + activate lifecycle runs in main)
//  5. Push subscription manager with its platform bindings
//  6. HTTP server (uses all above components)
func NewCompositionRoot() (*CompositionRoot, error) {
	root := &CompositionRoot{}

	if err := root.initLogger(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := root.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := root.initStore(); err != nil {
		return nil, fmt.Errorf("failed to initialize cache store: %w", err)
	}

	if err := root.initRouter(); err != nil {
		return nil, fmt.Errorf("failed to initialize cache router: %w", err)
	}

	root.initPushManager()
	root.initHTTPServer()

	return root, nil
}

// initLogger initializes the application logger
func (r *CompositionRoot) initLogger() error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	r.Logger = logger
	return nil
}

// loadConfig loads the application configuration
func (r *CompositionRoot) loadConfig() error {
	configPath := os.Getenv("GATEWAY_CONFIG_FILE")
	if configPath == "" {
		configPath = "/app/gateway_config.yaml"
	}

	cfg, err := config.LoadConfig(configPath, r.Logger)
	if err != nil {
		return err
	}

	r.Config = cfg
	return nil
}

// initStore selects the namespace store backend. Redis wins when both are
// enabled so multiple gateway replicas share one cache.
func (r *CompositionRoot) initStore() error {
	if r.Config.Redis.Enabled {
		client, err := redisstore.NewClient(&r.Config.Redis)
		if err != nil {
			return err
		}
		r.Store = redisstore.NewStore(&r.Config.Redis, client, r.Logger)
		r.Logger.Info("Using redis cache store", zap.String("url", r.Config.Redis.URL))
		return nil
	}

	r.Store = memory.NewStore(&r.Config.Memory, r.Logger)
	r.Logger.Info("Using in-memory cache store", zap.Int("size_mb", r.Config.Memory.SizeMB))
	return nil
}

// initRouter wires the upstream fetcher and the cache router.
func (r *CompositionRoot) initRouter() error {
	base, err := url.Parse(r.Config.UpstreamURL)
	if err != nil {
		return err
	}

	r.Fetcher = router.NewUpstreamFetcher(base, &http.Client{
		Timeout: r.Config.Router.FetchTimeout,
	})
	r.Router = router.New(r.Store, r.Fetcher, &r.Config.Router, r.Logger)
	return nil
}

// initPushManager wires the subscription manager with the local platform
// bindings and the backend notification store client.
func (r *CompositionRoot) initPushManager() {
	var store interfaces.SubscriptionBackend
	if r.Config.Push.BackendURL != "" {
		store = backend.NewClient(&r.Config.Push, r.Logger)
	}

	r.Manager = push.NewManager(
		platform.NewMemoryProvider(r.Config.UpstreamURL+"/push-endpoint"),
		platform.NewStaticGate(interfaces.PermissionDefault),
		platform.NewLogNotifier(r.Logger),
		platform.NewMemoryRegistry(r.Logger),
		store,
		&r.Config.Push,
		r.Logger,
	)
}

// initHTTPServer wires the gateway HTTP server.
func (r *CompositionRoot) initHTTPServer() {
	cacheHandler := router.NewHandler(r.Router, r.Fetcher, r.Logger)
	r.HTTPServer = httpserver.NewServer(cacheHandler, r.Manager, r.Logger)
}

// Cleanup releases all resources.
func (r *CompositionRoot) Cleanup() error {
	if r.Store != nil {
		if err := r.Store.Close(); err != nil {
			return err
		}
	}
	return nil
}
