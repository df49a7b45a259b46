package push

import (
	"encoding/json"

	"offline-gateway/internal/models"
)

// DefaultTitle is used when a push payload carries no usable title.
const DefaultTitle = "Marketplace"

// ParsePayload interprets a raw push message body. Structured payloads are
// decoded as JSON; anything that fails to parse degrades to a plain-text
// body under the default title, so a push is never dropped for being
// malformed.
func ParsePayload(data []byte) models.PushPayload {
	var payload models.PushPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return models.PushPayload{
			Title: DefaultTitle,
			Body:  string(data),
		}
	}
	if payload.Title == "" {
		payload.Title = DefaultTitle
	}
	return payload
}
