package push

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"offline-gateway/internal/config"
	"offline-gateway/internal/interfaces"
	"offline-gateway/internal/metrics"
	"offline-gateway/internal/models"
)

// Sentinel errors returned to the foreground so the UI can distinguish
// failure modes instead of retrying blindly.
var (
	// ErrUnsupported means the platform capability check failed; every
	// operation on the manager is a no-op failure.
	ErrUnsupported = errors.New("push: platform not supported")

	// ErrPermissionDenied is terminal for the session. Only the user can
	// clear it through platform settings; callers must not re-prompt.
	ErrPermissionDenied = errors.New("push: notification permission denied")

	// ErrPermissionRequired means permission has not been granted yet.
	ErrPermissionRequired = errors.New("push: notification permission not granted")

	// ErrBackendPersist means the platform subscription exists but the
	// backend store does not know about it. The platform subscription is
	// not rolled back; the next subscribe reuses it and retries the save.
	ErrBackendPersist = errors.New("push: backend persistence failed")
)

// Manager owns the push subscription lifecycle: permission acquisition,
// subscription create/teardown against the platform push service, backend
// synchronization, and the rendering and routing of incoming pushes.
type Manager struct {
	provider interfaces.PushProvider
	gate     interfaces.PermissionGate
	notifier interfaces.Notifier
	clients  interfaces.ClientRegistry
	backend  interfaces.SubscriptionBackend
	cfg      *config.PushConfig
	logger   *zap.Logger

	supported bool
}

// NewManager constructs the manager and performs the capability check: all
// platform bindings must be present for push to be supported.
func NewManager(
	provider interfaces.PushProvider,
	gate interfaces.PermissionGate,
	notifier interfaces.Notifier,
	clients interfaces.ClientRegistry,
	backend interfaces.SubscriptionBackend,
	cfg *config.PushConfig,
	logger *zap.Logger,
) *Manager {
	return &Manager{
		provider:  provider,
		gate:      gate,
		notifier:  notifier,
		clients:   clients,
		backend:   backend,
		cfg:       cfg,
		logger:    logger,
		supported: provider != nil && gate != nil && notifier != nil && clients != nil,
	}
}

// Supported reports the result of the capability check.
func (m *Manager) Supported() bool {
	return m.supported
}

// Permission reads the current notification permission.
func (m *Manager) Permission() (interfaces.Permission, error) {
	if !m.supported {
		return "", ErrUnsupported
	}
	return m.gate.Query(), nil
}

// RequestPermission triggers the platform consent prompt once. It succeeds
// only when the resulting permission is granted. Callers must not loop on
// it: each call may consume a prompt the platform will not show again.
func (m *Manager) RequestPermission(ctx context.Context) error {
	if !m.supported {
		return ErrUnsupported
	}

	perm, err := m.gate.Request(ctx)
	if err != nil {
		return fmt.Errorf("request permission: %w", err)
	}

	switch perm {
	case interfaces.PermissionGranted:
		return nil
	case interfaces.PermissionDenied:
		return ErrPermissionDenied
	default:
		return ErrPermissionRequired
	}
}

// Subscribe ensures a platform subscription exists and persists it in the
// backend store for userID. An existing platform subscription is reused
// rather than duplicated; the backend save happens either way, so a stale
// backend record is replaced. On backend failure the platform subscription
// is left in place and ErrBackendPersist is returned.
func (m *Manager) Subscribe(ctx context.Context, userID, token string) error {
	if !m.supported {
		return ErrUnsupported
	}

	switch m.gate.Query() {
	case interfaces.PermissionGranted:
	case interfaces.PermissionDenied:
		metrics.RecordSubscribe("denied")
		return ErrPermissionDenied
	default:
		metrics.RecordSubscribe("no_permission")
		return ErrPermissionRequired
	}

	sub, err := m.provider.Get(ctx)
	if err != nil {
		metrics.RecordSubscribe("error")
		return fmt.Errorf("read platform subscription: %w", err)
	}

	if sub == nil {
		sub, err = m.provider.Subscribe(ctx, m.cfg.ServerKey)
		if err != nil {
			metrics.RecordSubscribe("error")
			return fmt.Errorf("create platform subscription: %w", err)
		}
		m.logger.Info("Created push subscription", zap.String("endpoint", sub.Endpoint))
	} else {
		m.logger.Debug("Reusing existing push subscription", zap.String("endpoint", sub.Endpoint))
	}

	if m.backend == nil {
		// No backend store configured; the platform subscription alone is
		// the whole state.
		metrics.RecordSubscribe("ok")
		return nil
	}

	if err := m.backend.Save(ctx, userID, sub, token); err != nil {
		// Known inconsistency: subscribed at the platform, absent from the
		// backend. Not rolled back; the next subscribe retries the save.
		m.logger.Error("Failed to persist subscription",
			zap.String("user_id", userID), zap.Error(err))
		metrics.RecordSubscribe("backend_error")
		return fmt.Errorf("%w: %v", ErrBackendPersist, err)
	}

	metrics.RecordSubscribe("ok")
	return nil
}

// Unsubscribe tears down the platform subscription and removes the backend
// record by endpoint. With no platform subscription it is a no-op success
// and the backend is not contacted.
func (m *Manager) Unsubscribe(ctx context.Context, token string) error {
	if !m.supported {
		return ErrUnsupported
	}

	sub, err := m.provider.Get(ctx)
	if err != nil {
		metrics.RecordUnsubscribe("error")
		return fmt.Errorf("read platform subscription: %w", err)
	}
	if sub == nil {
		metrics.RecordUnsubscribe("noop")
		return nil
	}

	if err := m.provider.Unsubscribe(ctx); err != nil {
		metrics.RecordUnsubscribe("error")
		return fmt.Errorf("platform unsubscribe: %w", err)
	}

	if m.backend == nil {
		metrics.RecordUnsubscribe("ok")
		return nil
	}

	if err := m.backend.Remove(ctx, sub.Endpoint, token); err != nil {
		m.logger.Error("Failed to remove subscription record",
			zap.String("endpoint", sub.Endpoint), zap.Error(err))
		metrics.RecordUnsubscribe("backend_error")
		return fmt.Errorf("%w: %v", ErrBackendPersist, err)
	}

	metrics.RecordUnsubscribe("ok")
	return nil
}

// IsSubscribed checks the platform for a current subscription. The backend
// store is not consulted.
func (m *Manager) IsSubscribed(ctx context.Context) (bool, error) {
	if !m.supported {
		return false, ErrUnsupported
	}
	sub, err := m.provider.Get(ctx)
	if err != nil {
		return false, fmt.Errorf("read platform subscription: %w", err)
	}
	return sub != nil, nil
}

// ShowNotification renders a notification immediately.
func (m *Manager) ShowNotification(ctx context.Context, payload models.PushPayload) error {
	if !m.supported {
		return ErrUnsupported
	}
	return m.show(ctx, payload)
}

// HandlePush renders an incoming push message. Malformed payloads degrade
// to plain text; a push is never silently dropped.
func (m *Manager) HandlePush(ctx context.Context, data []byte) error {
	if !m.supported {
		return ErrUnsupported
	}
	return m.show(ctx, ParsePayload(data))
}

func (m *Manager) show(ctx context.Context, payload models.PushPayload) error {
	icon := payload.Icon
	if icon == "" {
		icon = m.cfg.DefaultIcon
	}
	badge := payload.Badge
	if badge == "" {
		badge = m.cfg.DefaultBadge
	}

	n := models.Notification{
		Title: payload.Title,
		Body:  payload.Body,
		Icon:  icon,
		Badge: badge,
		Tag:   payload.Tag,
		URL:   payload.URL,
		Actions: []models.NotificationAction{
			{Action: models.ActionOpen, Title: "Open"},
			{Action: models.ActionClose, Title: "Close"},
		},
	}

	if err := m.notifier.Show(ctx, n); err != nil {
		return fmt.Errorf("show notification: %w", err)
	}
	metrics.NotificationsShown.Inc()
	return nil
}

// HandleClick routes a notification click. The notification is already
// dismissed by the platform; a "close" action ends there. Any other
// activation navigates an existing session to the deep-link target and
// focuses it, or opens a new session when none is open.
func (m *Manager) HandleClick(ctx context.Context, action, target string) error {
	if !m.supported {
		return ErrUnsupported
	}
	if action == models.ActionClose {
		return nil
	}
	if target == "" {
		target = "/"
	}

	sessions, err := m.clients.List(ctx)
	if err != nil {
		return fmt.Errorf("list clients: %w", err)
	}

	if len(sessions) > 0 {
		client := sessions[0]
		if err := client.Navigate(ctx, target); err != nil {
			return fmt.Errorf("navigate client: %w", err)
		}
		if err := client.Focus(ctx); err != nil {
			return fmt.Errorf("focus client: %w", err)
		}
		return nil
	}

	if err := m.clients.OpenWindow(ctx, target); err != nil {
		return fmt.Errorf("open window: %w", err)
	}
	return nil
}
