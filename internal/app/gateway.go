package app

import (
	"context"
	"encoding/json"

	"undercover/internal/domain"
)

// Gateway delivers events to connected players. Handles are opaque
// connection identifiers owned by the transport.
type Gateway interface {
	Send(handle, event string, payload any) error
}

// EventHandler handles one inbound event from a connection
type EventHandler func(handle string, payload json.RawMessage) error

// EventSource is the inbound half of the transport
type EventSource interface {
	OnEvent(event string, handler EventHandler)
	OnDisconnect(func(handle string))
}

// SettingsSource provides the initial settings of a room created on first
// join. A nil result with a nil error means the room has no stored settings.
type SettingsSource interface {
	RoomSettings(ctx context.Context, code string) (*domain.Settings, error)
}
