package interfaces

import (
	"context"

	"offline-gateway/internal/models"
)

//go:generate mockgen -package=mock -source=backend.go -destination=mock/backend.go

// SubscriptionBackend is the backend notification store: the source of truth
// for "who to notify". The platform remains the source of truth for delivery.
type SubscriptionBackend interface {
	// Save persists a subscription for a user, authenticated with the
	// caller's bearer token. Saving an already known endpoint replaces the
	// record rather than duplicating it.
	Save(ctx context.Context, userID string, sub *models.Subscription, token string) error

	// Remove deletes the record identified by the subscription endpoint.
	Remove(ctx context.Context, endpoint, token string) error
}
