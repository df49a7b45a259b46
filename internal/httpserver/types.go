package httpserver

// SubscribeRequest is the foreground's request to enable notifications.
type SubscribeRequest struct {
	UserID string `json:"user_id"`
}

// ClickRequest reports a notification click from the platform.
type ClickRequest struct {
	Action string `json:"action"`
	URL    string `json:"url"`
}

// StatusResponse describes the current push subscription state.
type StatusResponse struct {
	Supported  bool   `json:"supported"`
	Permission string `json:"permission,omitempty"`
	Subscribed bool   `json:"subscribed"`
}

// Result is the generic success/error envelope.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
