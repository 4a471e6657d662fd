package session

import (
	"sync"

	"github.com/colorbar-salon/voice-agent/messages"
)

// TranscriptLog accumulates a session's utterances in speaking order.
// Appended utterances are never mutated; callers get copies.
type TranscriptLog struct {
	utterances []messages.Utterance
	mu         sync.Mutex
}

// NewTranscriptLog creates an empty transcript log.
func NewTranscriptLog() *TranscriptLog {
	return &TranscriptLog{
		utterances: make([]messages.Utterance, 0),
	}
}

// Append adds one utterance to the end of the transcript.
func (tl *TranscriptLog) Append(role, content string) {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	tl.utterances = append(tl.utterances, messages.Utterance{Role: role, Content: content})
}

// Snapshot returns a copy of the transcript in order.
func (tl *TranscriptLog) Snapshot() []messages.Utterance {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	out := make([]messages.Utterance, len(tl.utterances))
	copy(out, tl.utterances)
	return out
}

// Clear empties the transcript.
func (tl *TranscriptLog) Clear() {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	tl.utterances = make([]messages.Utterance, 0)
}

// Len returns the number of recorded utterances.
func (tl *TranscriptLog) Len() int {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return len(tl.utterances)
}
