package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"offline-gateway/internal/push"
)

// Server fronts the gateway: the cache router handles the storefront
// traffic, the push control API drives the subscription manager.
type Server struct {
	cacheHandler http.Handler
	manager      *push.Manager
	logger       *zap.Logger
	server       *http.Server
}

// NewServer creates the gateway HTTP server.
func NewServer(cacheHandler http.Handler, manager *push.Manager, logger *zap.Logger) *Server {
	return &Server{
		cacheHandler: cacheHandler,
		manager:      manager,
		logger:       logger,
	}
}

// Start starts the HTTP server on the given address.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.createRouter(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting gateway HTTP server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping gateway HTTP server")
	return s.server.Shutdown(ctx)
}

// createRouter creates and configures the HTTP router
func (s *Server) createRouter() *mux.Router {
	router := mux.NewRouter()

	// Push subscription control API
	router.HandleFunc("/push/status", s.handlePushStatus).Methods("GET")
	router.HandleFunc("/push/permission", s.handlePushPermission).Methods("POST")
	router.HandleFunc("/push/subscribe", s.handlePushSubscribe).Methods("POST")
	router.HandleFunc("/push/unsubscribe", s.handlePushUnsubscribe).Methods("POST")
	router.HandleFunc("/push/event", s.handlePushEvent).Methods("POST")
	router.HandleFunc("/push/click", s.handlePushClick).Methods("POST")

	// Health check
	router.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Everything else is storefront traffic going through the cache router
	router.PathPrefix("/").Handler(s.cacheHandler)

	return router
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeResponse(w, map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().UTC(),
	})
}

// parseRequest parses JSON request body
func (s *Server) parseRequest(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	defer r.Body.Close()

	return json.Unmarshal(body, v)
}

// writeResponse writes JSON response
func (s *Server) writeResponse(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to write response", zap.Error(err))
	}
}

// writeErrorResponse writes error response
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(Result{Success: false, Error: message}); err != nil {
		s.logger.Error("Failed to write error response", zap.Error(err))
	}
}
