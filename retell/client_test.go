package retell

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
)

func TestCreateWebCallMissingAgentID(t *testing.T) {
	requests := 0
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer upstream.Close()

	c := NewClient("test-key", upstream.URL)
	_, err := c.CreateWebCall(context.Background(), "", nil, nil)
	if !errors.Is(err, ErrMissingAgentID) {
		t.Fatalf("expected ErrMissingAgentID, got %v", err)
	}
	if requests != 0 {
		t.Errorf("expected no upstream request, got %d", requests)
	}
}

func TestCreateWebCallSuccess(t *testing.T) {
	const response = `{"call_id":"call-123","access_token":"tok-456"}`

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/v2/create-web-call" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected Authorization header %q", auth)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected Content-Type %q", ct)
		}

		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		if err := sonic.Unmarshal(body, &req); err != nil {
			t.Errorf("failed to parse request body: %v", err)
		}
		if req["agent_id"] != "agent-1" {
			t.Errorf("unexpected agent_id %v", req["agent_id"])
		}
		meta, _ := req["metadata"].(map[string]any)
		if meta["source"] != "web" {
			t.Errorf("metadata not forwarded: %v", req["metadata"])
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(response))
	}))
	defer upstream.Close()

	c := NewClient("test-key", upstream.URL)
	payload, err := c.CreateWebCall(context.Background(), "agent-1", map[string]any{"source": "web"}, nil)
	if err != nil {
		t.Fatalf("CreateWebCall failed: %v", err)
	}
	if string(payload) != response {
		t.Errorf("payload not relayed verbatim: %s", payload)
	}
}

func TestCreateWebCallUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid agent"}`, http.StatusUnprocessableEntity)
	}))
	defer upstream.Close()

	c := NewClient("test-key", upstream.URL)
	_, err := c.CreateWebCall(context.Background(), "agent-1", nil, nil)
	if !errors.Is(err, ErrCallCreationFailed) {
		t.Fatalf("expected ErrCallCreationFailed, got %v", err)
	}
}

func TestCreateWebCallTransportError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close() // refuse connections

	c := NewClient("test-key", upstream.URL)
	_, err := c.CreateWebCall(context.Background(), "agent-1", nil, nil)
	if !errors.Is(err, ErrCallCreationFailed) {
		t.Fatalf("expected ErrCallCreationFailed, got %v", err)
	}
}
