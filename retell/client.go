// Package retell is the thin bridge to the Retell voice-call provider.
package retell

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
)

var (
	// ErrMissingAgentID is returned before any request is issued.
	ErrMissingAgentID = errors.New("agent id is required")
	// ErrCallCreationFailed wraps transport or HTTP failures from the
	// provider; the underlying cause is logged, not surfaced.
	ErrCallCreationFailed = errors.New("failed to create web call")
)

// Client calls the Retell HTTP API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a provider client. baseURL has no trailing slash.
func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type webCallRequest struct {
	AgentID                   string         `json:"agent_id"`
	Metadata                  map[string]any `json:"metadata,omitempty"`
	RetellLLMDynamicVariables map[string]any `json:"retell_llm_dynamic_variables,omitempty"`
}

// CreateWebCall asks the provider to start a web call for the agent and
// relays the provider's JSON response verbatim.
func (c *Client) CreateWebCall(ctx context.Context, agentID string, metadata, dynamicVariables map[string]any) (json.RawMessage, error) {
	if agentID == "" {
		return nil, ErrMissingAgentID
	}

	body, err := sonic.Marshal(webCallRequest{
		AgentID:                   agentID,
		Metadata:                  metadata,
		RetellLLMDynamicVariables: dynamicVariables,
	})
	if err != nil {
		return nil, fmt.Errorf("encode web call request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/create-web-call", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build web call request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("❌ Retell create-web-call transport error: %v", err)
		return nil, ErrCallCreationFailed
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("❌ Retell create-web-call read error: %v", err)
		return nil, ErrCallCreationFailed
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("❌ Retell create-web-call returned %d: %s", resp.StatusCode, payload)
		return nil, ErrCallCreationFailed
	}

	return payload, nil
}
