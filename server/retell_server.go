package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/colorbar-salon/voice-agent/config"
	"github.com/colorbar-salon/voice-agent/session"
)

// RetellServer serves the voice provider's custom-LLM websocket protocol:
// the provider connects per call, pushes transcript turns, and receives
// streamed response events.
type RetellServer struct {
	httpServer     *http.Server
	upgrader       websocket.Upgrader
	sessionManager *session.Manager
	config         *config.Config
}

// NewRetellServer wires the provider-facing routes
func NewRetellServer(cfg *config.Config, sessionManager *session.Manager) *RetellServer {
	s := &RetellServer{
		sessionManager: sessionManager,
		config:         cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Provider connections don't send browser Origin headers.
				return true
			},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /llm-websocket/{call_id}", s.handleLLMWebSocket)
	mux.HandleFunc("GET /health", s.handleHealth)

	// Determine which port to use
	port := cfg.RetellPort
	if cfg.ServerType == "retell" {
		// When running as standalone Retell server, use the main port
		port = cfg.Port
	}

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
		// No ReadTimeout/WriteTimeout — these interfere with long-lived WebSocket connections.
		// The WebSocket layer handles its own timeouts via SetWriteDeadline/SetReadDeadline.
	}

	return s
}

// Start begins listening for connections
func (s *RetellServer) Start() error {
	addr := s.httpServer.Addr
	log.Printf("📞 Retell LLM server starting on %s", addr)
	log.Printf("📡 LLM endpoint: ws://localhost%s/llm-websocket/{call_id}", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server
func (s *RetellServer) Shutdown(ctx context.Context) error {
	log.Println("Shutting down Retell LLM server...")
	return s.httpServer.Shutdown(ctx)
}

func (s *RetellServer) handleLLMWebSocket(w http.ResponseWriter, r *http.Request) {
	callID := r.PathValue("call_id")
	if callID == "" {
		http.Error(w, "call_id is missing", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Retell WebSocket upgrade failed: %v", err)
		return
	}

	clientSession, err := s.sessionManager.CreateRetellSession(r.Context(), callID, conn)
	if err != nil {
		log.Printf("Failed to create Retell session: %v", err)
		conn.Close()
		return
	}

	log.Printf("📞 New Retell session created: %s (call %s)", clientSession.ID, callID)

	// Start the provider-protocol session (sends the begin message first)
	clientSession.StartRetell()

	// Wait for session to close
	<-clientSession.CloseChan

	// Clean up
	_ = s.sessionManager.RemoveSession(context.Background(), clientSession.ID)
	log.Printf("📞 Retell session closed: %s", clientSession.ID)
}

func (s *RetellServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","server":"retell","sessions":%d}`, s.sessionManager.GetActiveSessionCount())
}
