package session

import (
	"context"
	"testing"
	"time"

	"github.com/colorbar-salon/voice-agent/config"
	"github.com/colorbar-salon/voice-agent/messages"
)

func newTestConfig() *config.Config {
	return &config.Config{
		Port:           8080,
		RedisURL:       "localhost:1", // unreachable, manager runs memory-only
		MaxSessions:    4,
		SessionTimeout: time.Minute,
		AllowedOrigins: []string{"*"},
	}
}

func newTestManager(t *testing.T, cfg *config.Config) *Manager {
	t.Helper()
	sm, err := NewManager(cfg, &fakeResponder{})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(sm.Shutdown)
	return sm
}

func TestManagerCreateAndRemove(t *testing.T) {
	sm := newTestManager(t, newTestConfig())
	ctx := context.Background()

	cs, err := sm.CreateSession(ctx, newFakeConn())
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if sm.GetActiveSessionCount() != 1 {
		t.Errorf("count = %d, want 1", sm.GetActiveSessionCount())
	}

	got, ok := sm.GetSession(cs.ID)
	if !ok || got != cs {
		t.Error("GetSession did not return the created session")
	}

	if err := sm.RemoveSession(ctx, cs.ID); err != nil {
		t.Fatalf("RemoveSession failed: %v", err)
	}
	if sm.GetActiveSessionCount() != 0 {
		t.Errorf("count = %d after removal, want 0", sm.GetActiveSessionCount())
	}
	if !cs.IsClosed() {
		t.Error("removed session not closed")
	}

	// Removing an unknown id is a no-op.
	if err := sm.RemoveSession(ctx, "does-not-exist"); err != nil {
		t.Errorf("RemoveSession for unknown id: %v", err)
	}
}

func TestManagerMaxSessions(t *testing.T) {
	cfg := newTestConfig()
	cfg.MaxSessions = 1
	sm := newTestManager(t, cfg)
	ctx := context.Background()

	if _, err := sm.CreateSession(ctx, newFakeConn()); err != nil {
		t.Fatalf("first CreateSession failed: %v", err)
	}
	if _, err := sm.CreateSession(ctx, newFakeConn()); err == nil {
		t.Error("expected an error once the session cap is reached")
	}
}

func TestManagerCreateRetellSession(t *testing.T) {
	sm := newTestManager(t, newTestConfig())

	cs, err := sm.CreateRetellSession(context.Background(), "call-xyz", newFakeConn())
	if err != nil {
		t.Fatalf("CreateRetellSession failed: %v", err)
	}
	if !cs.IsRetell || cs.CallID != "call-xyz" {
		t.Errorf("unexpected session: IsRetell=%v CallID=%q", cs.IsRetell, cs.CallID)
	}
}

func TestManagerBroadcastSkipsRetellSessions(t *testing.T) {
	sm := newTestManager(t, newTestConfig())
	ctx := context.Background()

	relay, err := sm.CreateSession(ctx, newFakeConn())
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	provider, err := sm.CreateRetellSession(ctx, "call-xyz", newFakeConn())
	if err != nil {
		t.Fatalf("CreateRetellSession failed: %v", err)
	}

	sm.Broadcast(messages.NewResponseMessage("Welcome!"))

	assertText(t, popQueued(t, relay), "Welcome!")
	assertNoQueued(t, provider)
}

func TestCleanupInactiveSessions(t *testing.T) {
	cfg := newTestConfig()
	cfg.SessionTimeout = time.Nanosecond
	sm := newTestManager(t, cfg)
	ctx := context.Background()

	cs, err := sm.CreateSession(ctx, newFakeConn())
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	time.Sleep(time.Millisecond)
	sm.CleanupInactiveSessions(ctx)

	if sm.GetActiveSessionCount() != 0 {
		t.Errorf("count = %d after cleanup, want 0", sm.GetActiveSessionCount())
	}
	if !cs.IsClosed() {
		t.Error("cleaned-up session not closed")
	}
}

func TestManagerShutdownClosesSessions(t *testing.T) {
	sm := newTestManager(t, newTestConfig())

	cs, err := sm.CreateSession(context.Background(), newFakeConn())
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	sm.Shutdown()

	if !cs.IsClosed() {
		t.Error("session not closed on shutdown")
	}
	if sm.GetActiveSessionCount() != 0 {
		t.Errorf("count = %d after shutdown, want 0", sm.GetActiveSessionCount())
	}
}
