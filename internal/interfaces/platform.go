package interfaces

import (
	"context"

	"offline-gateway/internal/models"
)

//go:generate mockgen -package=mock -source=platform.go -destination=mock/platform.go

// Permission is the tri-state notification permission owned by the platform.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// PushProvider is the platform push-subscription primitive.
type PushProvider interface {
	// Get returns the current subscription, or nil if none exists.
	Get(ctx context.Context) (*models.Subscription, error)

	// Subscribe creates a new subscription bound to the given server key.
	Subscribe(ctx context.Context, serverKey string) (*models.Subscription, error)

	// Unsubscribe tears down the current subscription at the platform level.
	Unsubscribe(ctx context.Context) error
}

// PermissionGate is the platform notification-permission primitive.
type PermissionGate interface {
	// Query reads the current permission without prompting.
	Query() Permission

	// Request triggers the native consent prompt. Each call may consume a
	// user-facing prompt budget, so callers must not invoke it in a loop.
	Request(ctx context.Context) (Permission, error)
}

// Notifier is the platform notification-display primitive.
type Notifier interface {
	Show(ctx context.Context, n models.Notification) error
}

// Client is one open application session (tab/window).
type Client interface {
	URL() string
	Navigate(ctx context.Context, url string) error
	Focus(ctx context.Context) error
}

// ClientRegistry enumerates and opens application sessions.
type ClientRegistry interface {
	// List returns all open sessions for this origin, including ones not
	// currently controlled by this gateway.
	List(ctx context.Context) ([]Client, error)

	// OpenWindow opens a new session at the given URL.
	OpenWindow(ctx context.Context, url string) error
}
