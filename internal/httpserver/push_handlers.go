package httpserver

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"offline-gateway/internal/push"
)

// bearerToken extracts the caller's bearer token, if any.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// pushErrorStatus maps manager failures to HTTP statuses the foreground can
// branch on.
func pushErrorStatus(err error) int {
	switch {
	case errors.Is(err, push.ErrUnsupported):
		return http.StatusNotImplemented
	case errors.Is(err, push.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, push.ErrPermissionRequired):
		return http.StatusPreconditionFailed
	case errors.Is(err, push.ErrBackendPersist):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// handlePushStatus reports capability, permission and subscription state.
func (s *Server) handlePushStatus(w http.ResponseWriter, r *http.Request) {
	status := StatusResponse{Supported: s.manager.Supported()}

	if perm, err := s.manager.Permission(); err == nil {
		status.Permission = string(perm)
	} else {
		status.Permission = "unsupported"
	}

	if subscribed, err := s.manager.IsSubscribed(r.Context()); err == nil {
		status.Subscribed = subscribed
	}

	s.writeResponse(w, status)
}

// handlePushPermission triggers the platform consent prompt.
func (s *Server) handlePushPermission(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.RequestPermission(r.Context()); err != nil {
		s.writeErrorResponse(w, err.Error(), pushErrorStatus(err))
		return
	}
	s.writeResponse(w, Result{Success: true})
}

// handlePushSubscribe enables notifications for a user.
func (s *Server) handlePushSubscribe(w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if err := s.parseRequest(r, &req); err != nil {
		s.writeErrorResponse(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		s.writeErrorResponse(w, "Missing required field: user_id", http.StatusBadRequest)
		return
	}

	if err := s.manager.Subscribe(r.Context(), req.UserID, bearerToken(r)); err != nil {
		s.writeErrorResponse(w, err.Error(), pushErrorStatus(err))
		return
	}
	s.writeResponse(w, Result{Success: true})
}

// handlePushUnsubscribe disables notifications.
func (s *Server) handlePushUnsubscribe(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Unsubscribe(r.Context(), bearerToken(r)); err != nil {
		s.writeErrorResponse(w, err.Error(), pushErrorStatus(err))
		return
	}
	s.writeResponse(w, Result{Success: true})
}

// handlePushEvent receives a raw push payload from the platform and renders
// it. The body is passed through as-is; parsing and the plain-text fallback
// live in the manager.
func (s *Server) handlePushEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeErrorResponse(w, "Invalid request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := s.manager.HandlePush(r.Context(), body); err != nil {
		s.writeErrorResponse(w, err.Error(), pushErrorStatus(err))
		return
	}
	s.writeResponse(w, Result{Success: true})
}

// handlePushClick routes a notification click event.
func (s *Server) handlePushClick(w http.ResponseWriter, r *http.Request) {
	var req ClickRequest
	if err := s.parseRequest(r, &req); err != nil {
		s.writeErrorResponse(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if err := s.manager.HandleClick(r.Context(), req.Action, req.URL); err != nil {
		s.writeErrorResponse(w, err.Error(), pushErrorStatus(err))
		return
	}
	s.writeResponse(w, Result{Success: true})
}
