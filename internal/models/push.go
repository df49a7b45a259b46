package models

// SubscriptionKeys are the client encryption keys bound to a push
// subscription.
type SubscriptionKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// Subscription is the platform-issued push subscription descriptor. It is
// opaque to the gateway: the endpoint identifies the subscription at the
// push service, the keys belong to the client.
type Subscription struct {
	Endpoint string           `json:"endpoint"`
	Keys     SubscriptionKeys `json:"keys"`
}

// PushPayload is the structured body of a push message. URL is the deep-link
// target opened when the rendered notification is activated.
type PushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Icon  string `json:"icon,omitempty"`
	Badge string `json:"badge,omitempty"`
	Tag   string `json:"tag,omitempty"`
	URL   string `json:"url,omitempty"`
}

// Notification action identifiers rendered with every push notification.
const (
	ActionOpen  = "open"
	ActionClose = "close"
)

// NotificationAction is a button rendered on a notification.
type NotificationAction struct {
	Action string `json:"action"`
	Title  string `json:"title"`
}

// Notification is a fully resolved notification ready for display.
type Notification struct {
	Title   string               `json:"title"`
	Body    string               `json:"body"`
	Icon    string               `json:"icon,omitempty"`
	Badge   string               `json:"badge,omitempty"`
	Tag     string               `json:"tag,omitempty"`
	URL     string               `json:"url,omitempty"`
	Actions []NotificationAction `json:"actions,omitempty"`
}
