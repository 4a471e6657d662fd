// Package llm drives streaming chat completions for the voice agent: it
// turns one conversational turn into an ordered burst of reply events
// terminated by a single completion marker.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/colorbar-salon/voice-agent/config"
	"github.com/colorbar-salon/voice-agent/messages"
)

// ErrCompletionUnavailable is returned when the completion collaborator
// fails before producing any fragment. No events are emitted in that case.
var ErrCompletionUnavailable = errors.New("completion service unavailable")

// chunkStream is the slice of the provider's SSE stream the streamer needs.
// *ssestream.Stream[openai.ChatCompletionChunk] satisfies it; tests inject
// fakes.
type chunkStream interface {
	Next() bool
	Current() openai.ChatCompletionChunk
	Err() error
	Close() error
}

// streamOpener starts one streaming completion request.
type streamOpener func(ctx context.Context, params openai.ChatCompletionNewParams) chunkStream

// Client produces reply bursts from the language-model provider. It holds
// no per-call state; one Client is shared by all sessions.
type Client struct {
	model      string
	openStream streamOpener
}

// NewClient builds a Client from configuration. The underlying OpenAI
// client is constructed once and captured; sessions never touch it
// directly.
func NewClient(cfg *config.Config) *Client {
	opts := []option.RequestOption{option.WithAPIKey(cfg.OpenAIAPIKey)}
	if cfg.OpenAIOrgID != "" {
		opts = append(opts, option.WithOrganization(cfg.OpenAIOrgID))
	}
	api := openai.NewClient(opts...)

	return &Client{
		model: cfg.OpenAIModel,
		openStream: func(ctx context.Context, params openai.ChatCompletionNewParams) chunkStream {
			return api.Chat.Completions.NewStreaming(ctx, params)
		},
	}
}

// DraftBeginMessage returns the canned greeting event sent when a provider
// call connects. Response id 0 is reserved for it.
func (c *Client) DraftBeginMessage() messages.ResponseResponse {
	return messages.ResponseResponse{
		ResponseID:      0,
		Content:         BeginSentence,
		ContentComplete: true,
		EndCall:         false,
	}
}

// DraftResponse streams one reply burst for the request. Events arrive on
// the returned channel in upstream order: fragments first, then exactly one
// terminal event with empty content, then the channel closes.
//
// If the upstream call fails before the first fragment, DraftResponse
// returns ErrCompletionUnavailable and no channel. If the stream fails
// after fragments were delivered, the channel closes without a terminal
// event; consumers must treat that as a dropped terminal. Cancelling ctx
// stops emission.
func (c *Client) DraftResponse(ctx context.Context, req messages.ResponseRequiredRequest) (<-chan messages.ResponseResponse, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: BuildPrompt(req.Transcript, req.InteractionType, time.Now()),
	}

	stream := c.openStream(ctx, params)

	// Pull the first chunk synchronously so a dead upstream surfaces as an
	// error instead of an empty burst.
	if !stream.Next() {
		err := stream.Err()
		_ = stream.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCompletionUnavailable, err)
		}
		// Upstream ended cleanly with zero fragments; the terminal event is
		// still owed.
		out := make(chan messages.ResponseResponse, 1)
		out <- terminalEvent(req.ResponseID)
		close(out)
		return out, nil
	}

	out := make(chan messages.ResponseResponse)
	go func() {
		defer close(out)
		defer stream.Close()

		for {
			chunk := stream.Current()
			if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
				event := messages.ResponseResponse{
					ResponseID:      req.ResponseID,
					Content:         chunk.Choices[0].Delta.Content,
					ContentComplete: false,
					EndCall:         false,
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
			if !stream.Next() {
				break
			}
		}

		if err := stream.Err(); err != nil {
			// Mid-stream failure: already-delivered fragments stand, but the
			// terminal event is withheld so the consumer sees the burst as
			// interrupted.
			log.Printf("❌ Completion stream interrupted (response_id=%d): %v", req.ResponseID, err)
			return
		}

		select {
		case out <- terminalEvent(req.ResponseID):
		case <-ctx.Done():
		}
	}()

	return out, nil
}

func terminalEvent(responseID int) messages.ResponseResponse {
	return messages.ResponseResponse{
		ResponseID:      responseID,
		Content:         "",
		ContentComplete: true,
		EndCall:         false,
	}
}
