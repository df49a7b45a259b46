package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"offline-gateway/internal/config"
	"offline-gateway/internal/interfaces"
	"offline-gateway/internal/models"
)

// Ensure Client implements interfaces.SubscriptionBackend
var _ interfaces.SubscriptionBackend = (*Client)(nil)

// Client talks to the backend notification store over its REST API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a subscription backend client.
func NewClient(cfg *config.PushConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BackendURL, "/"),
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		logger:  logger,
	}
}

type subscribeRequest struct {
	UserID       string               `json:"user_id"`
	Subscription *models.Subscription `json:"subscription"`
}

type unsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

// Save persists a subscription for a user in the notification store.
func (c *Client) Save(ctx context.Context, userID string, sub *models.Subscription, token string) error {
	return c.post(ctx, "/api/notifications/subscribe", subscribeRequest{
		UserID:       userID,
		Subscription: sub,
	}, token)
}

// Remove deletes the record identified by the subscription endpoint.
func (c *Client) Remove(ctx context.Context, endpoint, token string) error {
	return c.post(ctx, "/api/notifications/unsubscribe", unsubscribeRequest{
		Endpoint: endpoint,
	}, token)
}

func (c *Client) post(ctx context.Context, path string, body interface{}, token string) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Body is best-effort context for the log line only.
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("Backend rejected request",
			zap.String("path", path), zap.Int("status", resp.StatusCode), zap.ByteString("body", msg))
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
	return nil
}
