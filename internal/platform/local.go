// Package platform provides local in-process implementations of the
// platform primitives (push service, permission prompt, notification
// display, client registry). They stand in when the gateway runs without a
// real browser binding; tests and alternative deployments inject their own.
package platform

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"offline-gateway/internal/interfaces"
	"offline-gateway/internal/models"
)

// Ensure the local bindings satisfy the platform contracts
var (
	_ interfaces.PushProvider   = (*MemoryProvider)(nil)
	_ interfaces.PermissionGate = (*StaticGate)(nil)
	_ interfaces.Notifier       = (*LogNotifier)(nil)
	_ interfaces.ClientRegistry = (*MemoryRegistry)(nil)
)

// MemoryProvider keeps at most one subscription in memory.
type MemoryProvider struct {
	mu       sync.Mutex
	sub      *models.Subscription
	endpoint string
}

// NewMemoryProvider creates a provider issuing subscriptions against the
// given push service endpoint base.
func NewMemoryProvider(endpoint string) *MemoryProvider {
	return &MemoryProvider{endpoint: endpoint}
}

// Get returns the current subscription, or nil if none exists.
func (p *MemoryProvider) Get(ctx context.Context) (*models.Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sub, nil
}

// Subscribe creates a new subscription with freshly generated keys.
func (p *MemoryProvider) Subscribe(ctx context.Context, serverKey string) (*models.Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sub != nil {
		return p.sub, nil
	}

	token, err := randomToken()
	if err != nil {
		return nil, fmt.Errorf("generate subscription token: %w", err)
	}
	p256dh, err := randomToken()
	if err != nil {
		return nil, fmt.Errorf("generate p256dh key: %w", err)
	}
	auth, err := randomToken()
	if err != nil {
		return nil, fmt.Errorf("generate auth key: %w", err)
	}

	p.sub = &models.Subscription{
		Endpoint: p.endpoint + "/" + token,
		Keys: models.SubscriptionKeys{
			P256dh: p256dh,
			Auth:   auth,
		},
	}
	return p.sub, nil
}

// Unsubscribe drops the current subscription.
func (p *MemoryProvider) Unsubscribe(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sub = nil
	return nil
}

func randomToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// StaticGate holds a fixed permission that Request flips to granted unless
// it is already denied; denied stays denied, matching the platform rule
// that only the user can clear it.
type StaticGate struct {
	mu   sync.Mutex
	perm interfaces.Permission
}

// NewStaticGate creates a gate starting at the given permission.
func NewStaticGate(initial interfaces.Permission) *StaticGate {
	if initial == "" {
		initial = interfaces.PermissionDefault
	}
	return &StaticGate{perm: initial}
}

// Query reads the current permission without prompting.
func (g *StaticGate) Query() interfaces.Permission {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.perm
}

// Request simulates the consent prompt.
func (g *StaticGate) Request(ctx context.Context) (interfaces.Permission, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.perm == interfaces.PermissionDefault {
		g.perm = interfaces.PermissionGranted
	}
	return g.perm, nil
}

// LogNotifier renders notifications to the log.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier writing to the given logger.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Show renders the notification as a log line.
func (n *LogNotifier) Show(ctx context.Context, notification models.Notification) error {
	n.logger.Info("Notification",
		zap.String("title", notification.Title),
		zap.String("body", notification.Body),
		zap.String("tag", notification.Tag),
		zap.String("url", notification.URL))
	return nil
}

// MemoryRegistry tracks open sessions in memory.
type MemoryRegistry struct {
	mu      sync.Mutex
	clients []interfaces.Client
	logger  *zap.Logger
}

// NewMemoryRegistry creates an empty registry.
func NewMemoryRegistry(logger *zap.Logger) *MemoryRegistry {
	return &MemoryRegistry{logger: logger}
}

// List returns all open sessions.
func (r *MemoryRegistry) List(ctx context.Context) ([]interfaces.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]interfaces.Client(nil), r.clients...), nil
}

// OpenWindow opens a new session at the given URL.
func (r *MemoryRegistry) OpenWindow(ctx context.Context, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients = append(r.clients, &memoryClient{url: url})
	r.logger.Info("Opened window", zap.String("url", url))
	return nil
}

type memoryClient struct {
	mu  sync.Mutex
	url string
}

func (c *memoryClient) URL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.url
}

func (c *memoryClient) Navigate(ctx context.Context, url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.url = url
	return nil
}

func (c *memoryClient) Focus(ctx context.Context) error {
	return nil
}
