package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"

	"github.com/colorbar-salon/voice-agent/config"
	"github.com/colorbar-salon/voice-agent/session"
)

func newRetellTestServer(t *testing.T, cfg *config.Config) *RetellServer {
	t.Helper()
	sm, err := session.NewManager(cfg, nil)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(sm.Shutdown)
	return NewRetellServer(cfg, sm)
}

func retellTestConfig() *config.Config {
	return &config.Config{
		Port:           8080,
		RetellPort:     8081,
		ServerType:     "both",
		RedisURL:       "localhost:1",
		MaxSessions:    4,
		SessionTimeout: time.Minute,
	}
}

// Standalone mode takes the main port; "both" keeps the dedicated one.
func TestRetellServerPortSelection(t *testing.T) {
	both := newRetellTestServer(t, retellTestConfig())
	if both.httpServer.Addr != ":8081" {
		t.Errorf("addr = %q, want :8081 when running alongside the relay", both.httpServer.Addr)
	}

	cfg := retellTestConfig()
	cfg.ServerType = "retell"
	standalone := newRetellTestServer(t, cfg)
	if standalone.httpServer.Addr != ":8080" {
		t.Errorf("addr = %q, want :8080 when running standalone", standalone.httpServer.Addr)
	}
}

func TestRetellServerHealth(t *testing.T) {
	s := newRetellTestServer(t, retellTestConfig())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var health struct {
		Status   string `json:"status"`
		Server   string `json:"server"`
		Sessions int    `json:"sessions"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if health.Status != "ok" || health.Server != "retell" {
		t.Errorf("unexpected health response: %+v", health)
	}
}
