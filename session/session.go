package session

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"github.com/colorbar-salon/voice-agent/business"
	"github.com/colorbar-salon/voice-agent/messages"
)

// Responder produces reply bursts for conversational turns. *llm.Client
// satisfies it; sessions never construct their own collaborator.
type Responder interface {
	DraftBeginMessage() messages.ResponseResponse
	DraftResponse(ctx context.Context, req messages.ResponseRequiredRequest) (<-chan messages.ResponseResponse, error)
}

const (
	writeBufferSize = 256
	writeTimeout    = 10 * time.Second
)

// State is the relay state of one connection.
type State int

const (
	// StateIdle means no call is bound yet.
	StateIdle State = iota
	// StateActive means a call id is bound and messages are accepted.
	StateActive
	// StateClosed is terminal.
	StateClosed
)

// Conn is the slice of a websocket connection the session needs.
// *websocket.Conn satisfies it; tests inject fakes.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// ClientSession represents a single connection's relay state. All inbound
// events for one session are handled to completion in its read loop, so no
// two handlers for the same session ever run concurrently.
type ClientSession struct {
	ID         string
	IsRetell   bool // Whether this session speaks the provider LLM protocol
	CallID     string
	ClientConn Conn
	Agent      Responder
	Transcript *TranscriptLog
	CreatedAt  time.Time

	// Use channels for non-blocking writes
	writeChan chan any

	mu           sync.RWMutex
	state        State
	lastActivity time.Time
	closed       bool
	responseSeq  int

	CloseChan chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewClientSession creates a browser relay session. It starts Idle; a call
// id must be bound before messages are accepted.
func NewClientSession(id string, clientConn Conn, agent Responder) *ClientSession {
	ctx, cancel := context.WithCancel(context.Background())

	if ws, ok := clientConn.(*websocket.Conn); ok {
		ws.SetReadLimit(64 * 1024)
	}

	return &ClientSession{
		ID:           id,
		ClientConn:   clientConn,
		Agent:        agent,
		Transcript:   NewTranscriptLog(),
		CreatedAt:    time.Now(),
		lastActivity: time.Now(),
		state:        StateIdle,
		writeChan:    make(chan any, writeBufferSize),
		CloseChan:    make(chan struct{}),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// NewRetellClientSession creates a provider-protocol session. The call id
// arrives with the websocket upgrade, so the session starts Active.
func NewRetellClientSession(id, callID string, clientConn Conn, agent Responder) *ClientSession {
	session := NewClientSession(id, clientConn, agent)
	session.IsRetell = true
	session.CallID = callID
	session.state = StateActive
	return session
}

// Start begins the bidirectional event handling for browser relay clients
func (cs *ClientSession) Start() {
	go cs.writePump()
	go cs.handleClientMessages()
}

// StartRetell begins the provider-protocol handling: the begin message goes
// out first, then turns are served as they arrive.
func (cs *ClientSession) StartRetell() {
	go cs.writePump()
	cs.queueMessage(cs.Agent.DraftBeginMessage())
	go cs.handleRetellMessages()
}

// writePump handles all outgoing messages in a single goroutine
func (cs *ClientSession) writePump() {
	defer func() {
		// Send close message before exiting
		cs.ClientConn.SetWriteDeadline(time.Now().Add(writeTimeout))
		cs.ClientConn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		)
	}()

	for {
		select {
		case <-cs.CloseChan:
			return
		case msg, ok := <-cs.writeChan:
			if !ok {
				// Channel closed, exit gracefully
				return
			}
			if !cs.writeJSON(msg) {
				return
			}

			n := len(cs.writeChan)
			for i := 0; i < n; i++ {
				select {
				case msg, ok := <-cs.writeChan:
					if !ok {
						return
					}
					if !cs.writeJSON(msg) {
						return
					}
				default:
					// No more messages, continue outer loop
				}
			}
		}
	}
}

func (cs *ClientSession) writeJSON(msg any) bool {
	data, err := sonic.Marshal(msg)
	if err != nil {
		log.Printf("⚠️ [%s] Failed to encode outbound message: %v", cs.shortID(), err)
		return true
	}
	cs.ClientConn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return cs.ClientConn.WriteMessage(websocket.TextMessage, data) == nil
}

// queueMessage adds a message to the write queue (non-blocking)
func (cs *ClientSession) queueMessage(msg any) {
	cs.mu.RLock()
	closed := cs.closed
	cs.mu.RUnlock()
	if closed {
		return
	}
	select {
	case cs.writeChan <- msg:
		cs.touch()
	default:
		// Queue full, drop message (shouldn't happen with proper sizing)
	}
}

func (cs *ClientSession) touch() {
	cs.mu.Lock()
	cs.lastActivity = time.Now()
	cs.mu.Unlock()
}

// LastSeen reports the time of the session's most recent activity.
func (cs *ClientSession) LastSeen() time.Time {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.lastActivity
}

// State reports the current relay state.
func (cs *ClientSession) State() State {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.state
}

// IsClosed returns whether the session is closed
func (cs *ClientSession) IsClosed() bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.closed
}

// Close terminates the session and cleans up resources
func (cs *ClientSession) Close() error {
	cs.mu.Lock()
	if cs.closed {
		cs.mu.Unlock()
		return nil
	}
	cs.closed = true
	cs.state = StateClosed
	cs.mu.Unlock()

	cs.cancel()

	// Close the write channel first to stop writePump
	close(cs.writeChan)

	// Signal close (for other goroutines waiting on this)
	close(cs.CloseChan)

	cs.Transcript.Clear()

	// Close client connection - don't write close message as writePump is stopped
	if cs.ClientConn != nil {
		cs.ClientConn.Close()
	}

	return nil
}

// handleClientMessages processes browser relay events. Each event is
// handled to completion, including any wait on streamed completion
// fragments, before the next one is read.
func (cs *ClientSession) handleClientMessages() {
	defer cs.Close()

	for {
		select {
		case <-cs.CloseChan:
			return
		default:
			_, raw, err := cs.ClientConn.ReadMessage()
			if err != nil {
				return
			}

			cs.touch()

			var msg messages.ClientMessage
			if err := sonic.Unmarshal(raw, &msg); err != nil {
				cs.queueMessage(messages.NewErrorMessage("Invalid message format."))
				continue
			}

			cs.dispatch(&msg)
		}
	}
}

// dispatch routes one inbound event through the session state machine.
// All state checks live here and in the two handlers below, so the
// Idle/Active/Closed invariant is enforced in one place.
func (cs *ClientSession) dispatch(msg *messages.ClientMessage) {
	if cs.State() == StateClosed {
		return
	}

	switch msg.Event {
	case messages.EventCall:
		cs.handleCallStart(msg.Payload)
	case messages.EventMessage:
		cs.handleMessage(msg.Payload)
	default:
		cs.queueMessage(messages.NewErrorMessage("Unknown event: " + msg.Event))
	}
}

func (cs *ClientSession) handleCallStart(payload json.RawMessage) {
	var p messages.CallPayload
	if len(payload) > 0 {
		_ = sonic.Unmarshal(payload, &p)
	}
	if p.CallID == "" {
		cs.queueMessage(messages.NewErrorMessage("call_id is missing"))
		return
	}

	cs.mu.Lock()
	cs.CallID = p.CallID
	if cs.state == StateIdle {
		cs.state = StateActive
	}
	cs.mu.Unlock()

	log.Printf("📞 [%s] Call bound: %s", cs.shortID(), p.CallID)
	cs.queueMessage(messages.NewResponseMessage("WebSocket call initiated for ID: " + p.CallID))
}

func (cs *ClientSession) handleMessage(payload json.RawMessage) {
	if cs.State() != StateActive {
		cs.queueMessage(messages.NewErrorMessage("call_id is missing"))
		return
	}

	var p messages.MessagePayload
	if len(payload) > 0 {
		_ = sonic.Unmarshal(payload, &p)
	}
	if p.Message == "" {
		cs.queueMessage(messages.NewErrorMessage("Message cannot be empty."))
		return
	}

	cs.Transcript.Append(messages.RoleUser, p.Message)

	// Rule-based FAQ answers short-circuit the language model.
	if answer, ok := business.AnswerFAQ(p.Message); ok {
		cs.Transcript.Append(messages.RoleAgent, answer)
		cs.queueMessage(messages.NewResponseMessage(answer))
		return
	}

	cs.respondWithAgent()
}

// respondWithAgent streams one reply burst to the client and records the
// completed reply in the transcript.
func (cs *ClientSession) respondWithAgent() {
	cs.mu.Lock()
	cs.responseSeq++
	responseID := cs.responseSeq
	cs.mu.Unlock()

	req := messages.ResponseRequiredRequest{
		ResponseID:      responseID,
		Transcript:      cs.Transcript.Snapshot(),
		InteractionType: messages.InteractionResponseRequired,
	}

	events, err := cs.Agent.DraftResponse(cs.ctx, req)
	if err != nil {
		log.Printf("❌ [%s] Completion failed (response_id=%d): %v", cs.shortID(), responseID, err)
		cs.queueMessage(messages.NewErrorMessage("Failed to generate a response."))
		return
	}

	var reply strings.Builder
	sawTerminal := false
	endCall := false

loop:
	for {
		select {
		case <-cs.CloseChan:
			return
		case ev, ok := <-events:
			if !ok {
				break loop
			}
			cs.queueMessage(messages.NewReplyChunk(ev))
			if ev.ContentComplete {
				sawTerminal = true
			} else {
				reply.WriteString(ev.Content)
			}
			if ev.EndCall {
				endCall = true
			}
		}
	}

	if reply.Len() > 0 {
		cs.Transcript.Append(messages.RoleAgent, reply.String())
	}
	if !sawTerminal {
		// The burst ended without its terminal event; tell the client
		// rather than leave it waiting for completion.
		cs.queueMessage(messages.NewErrorMessage("The response was interrupted."))
	}
	if endCall {
		log.Printf("📞 [%s] end_call received, closing session", cs.shortID())
		cs.Close()
	}
}

// retellEvent is the inbound envelope on the provider LLM channel.
type retellEvent struct {
	InteractionType string               `json:"interaction_type"`
	ResponseID      int                  `json:"response_id"`
	Transcript      []messages.Utterance `json:"transcript"`
}

// handleRetellMessages processes provider LLM protocol events: each
// response_required or reminder_required turn is answered with a streamed
// burst of response events.
func (cs *ClientSession) handleRetellMessages() {
	defer cs.Close()

	for {
		select {
		case <-cs.CloseChan:
			return
		default:
			_, raw, err := cs.ClientConn.ReadMessage()
			if err != nil {
				if !cs.IsClosed() {
					log.Printf("❌ [%s] Provider read error: %v", cs.shortID(), err)
				}
				return
			}

			cs.touch()

			var ev retellEvent
			if err := sonic.Unmarshal(raw, &ev); err != nil {
				log.Printf("⚠️ [%s] Failed to parse provider event: %v", cs.shortID(), err)
				continue
			}

			switch ev.InteractionType {
			case messages.InteractionResponseRequired, messages.InteractionReminderRequired:
				cs.handleRetellTurn(&ev)

			case messages.InteractionUpdateOnly:
				// Transcript refresh without a reply trigger

			case messages.InteractionCallDetails:
				log.Printf("📞 [%s] Call details received", cs.shortID())

			case messages.InteractionPingPong:
				// Keepalive, nothing to answer

			default:
				log.Printf("⚠️ [%s] Unknown interaction type: %s", cs.shortID(), ev.InteractionType)
			}
		}
	}
}

func (cs *ClientSession) handleRetellTurn(ev *retellEvent) {
	req := messages.ResponseRequiredRequest{
		ResponseID:      ev.ResponseID,
		Transcript:      ev.Transcript,
		InteractionType: ev.InteractionType,
	}

	events, err := cs.Agent.DraftResponse(cs.ctx, req)
	if err != nil {
		log.Printf("❌ [%s] Completion failed (response_id=%d): %v", cs.shortID(), ev.ResponseID, err)
		return
	}

	endCall := false

loop:
	for {
		select {
		case <-cs.CloseChan:
			return
		case rr, ok := <-events:
			if !ok {
				break loop
			}
			cs.queueMessage(rr)
			if rr.EndCall {
				endCall = true
			}
		}
	}

	if endCall {
		log.Printf("📞 [%s] end_call received, closing session", cs.shortID())
		cs.Close()
	}
}

func (cs *ClientSession) shortID() string {
	if len(cs.ID) > 8 {
		return cs.ID[:8]
	}
	return cs.ID
}
