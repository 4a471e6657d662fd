package messages

// Outbound event names on the browser relay channel
const (
	EventResponse = "response"
)

// ServerMessage represents an event sent to the frontend client
type ServerMessage struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// TextPayload carries a complete reply (welcome, FAQ answer, status)
type TextPayload struct {
	Message string `json:"message"`
}

// ErrorPayload carries a recoverable error surfaced to the client
type ErrorPayload struct {
	Error string `json:"error"`
}

// NewResponseMessage creates a complete text response event
func NewResponseMessage(text string) *ServerMessage {
	return &ServerMessage{
		Event:   EventResponse,
		Payload: TextPayload{Message: text},
	}
}

// NewErrorMessage creates an error response event
func NewErrorMessage(text string) *ServerMessage {
	return &ServerMessage{
		Event:   EventResponse,
		Payload: ErrorPayload{Error: text},
	}
}

// NewReplyChunk wraps one streamed reply event for the relay channel.
// The payload keeps the provider-protocol field names so the client can
// reassemble the burst and detect the terminal event.
func NewReplyChunk(rr ResponseResponse) *ServerMessage {
	return &ServerMessage{
		Event:   EventResponse,
		Payload: rr,
	}
}
