package messages

// Speaker roles in a call transcript
const (
	RoleAgent = "agent"
	RoleUser  = "user"
)

// Interaction types on the provider LLM channel
const (
	InteractionResponseRequired = "response_required"
	InteractionReminderRequired = "reminder_required"
	InteractionUpdateOnly       = "update_only"
	InteractionCallDetails      = "call_details"
	InteractionPingPong         = "ping_pong"
)

// Utterance is one speaker turn in a call transcript. Utterances are
// immutable once produced; an ordered slice of them forms the transcript.
type Utterance struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseRequiredRequest is one trigger asking the agent to produce a
// reply. ResponseID correlates all events of the resulting burst.
type ResponseRequiredRequest struct {
	ResponseID      int         `json:"response_id"`
	Transcript      []Utterance `json:"transcript"`
	InteractionType string      `json:"interaction_type"`
}

// ResponseResponse is one event of a reply burst: zero or more events with
// ContentComplete=false carrying text fragments (concatenation order is
// emission order), then exactly one terminal event with ContentComplete=true
// and empty Content. EndCall tells the relay to terminate the call after
// delivering the event.
type ResponseResponse struct {
	ResponseID      int    `json:"response_id"`
	Content         string `json:"content"`
	ContentComplete bool   `json:"content_complete"`
	EndCall         bool   `json:"end_call"`
}
