package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/bytedance/sonic"

	"github.com/colorbar-salon/voice-agent/business"
	"github.com/colorbar-salon/voice-agent/messages"
	"github.com/colorbar-salon/voice-agent/retell"
)

// CallBridge starts calls against the voice provider. *retell.Client
// satisfies it; tests inject fakes.
type CallBridge interface {
	CreateWebCall(ctx context.Context, agentID string, metadata, dynamicVariables map[string]any) (json.RawMessage, error)
}

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>The Color Bar Salon AI Agent</title></head>
<body>
<h1>The Color Bar Salon AI Agent</h1>
<button onclick="startCall()">Start Call</button>
<script>
function startCall() {
	fetch("/start-call", {
		method: "POST",
		headers: {"Content-Type": "application/json"},
		body: JSON.stringify({agent_id: "demo-agent"})
	}).then(r => r.json()).then(console.log).catch(console.error);
}
</script>
</body>
</html>
`

type bookingRequest struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Service string `json:"service"`
	Date    string `json:"date"`
	Time    string `json:"time"`
}

type startCallRequest struct {
	AgentID                   string         `json:"agent_id"`
	Metadata                  map[string]any `json:"metadata"`
	RetellLLMDynamicVariables map[string]any `json:"retell_llm_dynamic_variables"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(indexHTML))
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "All fields are required."})
		return
	}

	confirmation, err := business.ConfirmBooking(req.Name, req.Contact, req.Service, req.Date, req.Time)
	if err != nil {
		var missing *business.MissingFieldsError
		if errors.As(err, &missing) {
			log.Printf("⚠️ Booking rejected, missing fields: %v", missing.Fields)
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "All fields are required."})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": confirmation})
}

func (s *Server) handleStartCall(w http.ResponseWriter, r *http.Request) {
	var req startCallRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Agent ID is required."})
		return
	}

	if req.AgentID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Agent ID is required."})
		return
	}

	payload, err := s.callBridge.CreateWebCall(r.Context(), req.AgentID, req.Metadata, req.RetellLLMDynamicVariables)
	if err != nil {
		if errors.Is(err, retell.ErrMissingAgentID) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Agent ID is required."})
			return
		}
		log.Printf("❌ start-call failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to create web call."})
		return
	}

	// Greet connected relay clients once the call exists.
	s.sessionManager.Broadcast(messages.NewResponseMessage(welcomeMessage))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// handleCallAck acknowledges an HTTP probe of the LLM websocket path. The
// live protocol is served by the Retell server's websocket upgrade.
func (s *Server) handleCallAck(w http.ResponseWriter, r *http.Request) {
	callID := r.PathValue("call_id")
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "WebSocket call initiated for ID: " + callID,
	})
}

func decodeBody(r *http.Request, v any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return errors.New("empty body")
	}
	return sonic.Unmarshal(body, v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
