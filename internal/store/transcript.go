package store

import "sync"

// Transcript is an in-memory, append-only log of chat turns.
type Transcript struct {
	mu       sync.RWMutex
	messages []ChatMessage
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append adds msg to the end of the log and returns the new length.
func (t *Transcript) Append(msg ChatMessage) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, msg)
	return len(t.messages)
}

func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}

// Messages returns a copy of the log in append order.
func (t *Transcript) Messages() []ChatMessage {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]ChatMessage, len(t.messages))
	copy(out, t.messages)
	return out
}
