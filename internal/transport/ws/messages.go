package ws

import (
	"encoding/json"
	"time"
)

// Connection-level message types. Game events use the names in the domain
// package.
const (
	MsgPing      = "ping"
	MsgPong      = "pong"
	MsgError     = "error"
	MsgConnected = "connected"
)

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type      string `json:"type"`
	Payload   any    `json:"payload,omitempty"`
	Timestamp string `json:"timestamp"`
}

// NewServerMessage creates a new server message with current timestamp
func NewServerMessage(msgType string, payload any) *ServerMessage {
	return &ServerMessage{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// ConnectedPayload is sent once after the upgrade
type ConnectedPayload struct {
	Handle string `json:"connectionId"`
}

// ErrorPayload is the payload for error message
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes for failures outside the game rules
const (
	ErrCodeInvalidMessage = "INVALID_MESSAGE"
	ErrCodeUnknownEvent   = "UNKNOWN_EVENT"
	ErrCodeRateLimited    = "RATE_LIMITED"
	ErrCodeInternalError  = "INTERNAL_ERROR"
)
