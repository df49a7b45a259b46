package router

import (
	"io"
	"net/http"

	"go.uber.org/zap"

	"offline-gateway/internal/interfaces"
)

// Handler adapts the Router to http.Handler. GET requests go through the
// classification and strategy machinery; anything else is proxied straight
// to the upstream, never cached.
type Handler struct {
	router  *Router
	fetcher interfaces.Fetcher
	logger  *zap.Logger
}

// NewHandler creates the http.Handler front of the cache router.
func NewHandler(router *Router, fetcher interfaces.Fetcher, logger *zap.Logger) *Handler {
	return &Handler{
		router:  router,
		fetcher: fetcher,
		logger:  logger,
	}
}

// ServeHTTP dispatches the request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		h.passthrough(w, req)
		return
	}

	entry, err := h.router.Route(req.Context(), req)
	if err != nil {
		h.logger.Error("Routing failed", zap.String("url", req.URL.String()), zap.Error(err))
		http.Error(w, "Bad Gateway", http.StatusBadGateway)
		return
	}

	if entry == nil {
		// The stale-while-revalidate no-cache/no-network outcome: the
		// caller receives no response at all. Aborting the handler is the
		// closest HTTP rendering of that contract.
		panic(http.ErrAbortHandler)
	}

	for name, values := range entry.Headers {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	w.WriteHeader(entry.Status)
	if _, err := w.Write(entry.Body); err != nil {
		h.logger.Debug("Response write failed", zap.Error(err))
	}
}

// passthrough proxies a non-GET request without touching the cache.
func (h *Handler) passthrough(w http.ResponseWriter, req *http.Request) {
	resp, err := h.fetcher.Do(req)
	if err != nil {
		h.logger.Warn("Passthrough fetch failed",
			zap.String("method", req.Method), zap.String("url", req.URL.String()), zap.Error(err))
		http.Error(w, "Bad Gateway", http.StatusBadGateway)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	for name, values := range resp.Header {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		h.logger.Debug("Passthrough copy failed", zap.Error(err))
	}
}
