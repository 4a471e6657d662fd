package messages

import "encoding/json"

// Inbound event names on the browser relay channel
const (
	EventCall    = "llm-websocket-call"
	EventMessage = "message"
)

// ClientMessage represents an event from the frontend client
type ClientMessage struct {
	Event   string          `json:"event"` // "llm-websocket-call", "message"
	Payload json.RawMessage `json:"payload"`
}

// CallPayload binds a session to a provider call
type CallPayload struct {
	CallID string `json:"call_id"`
}

// MessagePayload carries one user utterance from the client
type MessagePayload struct {
	Message string `json:"message"`
}
