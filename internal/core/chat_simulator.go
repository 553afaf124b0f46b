package core

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"soporte.ai/dashboard/internal/store"
)

// DefaultFallbackMessage is the bot turn appended when a round-trip fails.
const DefaultFallbackMessage = "Error al conectar con el servidor."

var (
	ErrEmptyQuestion     = errors.New("question is empty")
	ErrRoundTripInFlight = errors.New("a chat round-trip is already in flight")
)

// Asker answers one question through the inference endpoint.
type Asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

// ChatSnapshot is a point-in-time copy of the simulator session.
type ChatSnapshot struct {
	Transcript   []store.ChatMessage
	PendingInput string
	Waiting      bool
	RoundTrips   int // Completed round-trips, successful or not
}

type ChatOption func(*ChatSimulator)

func WithChatLogger(logger *zap.Logger) ChatOption {
	return func(s *ChatSimulator) {
		s.logger = logger
	}
}

// WithChatObserver registers fn to receive a snapshot after every state
// change. fn runs on the goroutine that caused the change.
func WithChatObserver(fn func(ChatSnapshot)) ChatOption {
	return func(s *ChatSimulator) {
		s.observer = fn
	}
}

func WithFallbackMessage(text string) ChatOption {
	return func(s *ChatSimulator) {
		if text != "" {
			s.fallback = text
		}
	}
}

// ChatSimulator keeps a test conversation with the support agent. Only one
// question may be outstanding at a time.
type ChatSimulator struct {
	asker    Asker
	logger   *zap.Logger
	observer func(ChatSnapshot)
	fallback string

	transcript *store.Transcript

	mu         sync.Mutex
	pending    string
	waiting    bool
	roundTrips int
}

func NewChatSimulator(asker Asker, opts ...ChatOption) *ChatSimulator {
	s := &ChatSimulator{
		asker:      asker,
		logger:     zap.NewNop(),
		fallback:   DefaultFallbackMessage,
		transcript: store.NewTranscript(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetPendingInput replaces the staged question. Blank text is accepted here
// and rejected by Send.
func (s *ChatSimulator) SetPendingInput(text string) {
	s.mu.Lock()
	s.pending = text
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// Send runs one round-trip for the staged question and returns the bot turn
// it appended. A failed round-trip still returns a nil error: the failure is
// reported as the fallback bot turn. ErrEmptyQuestion and
// ErrRoundTripInFlight are returned without touching the transcript or the
// network.
func (s *ChatSimulator) Send(ctx context.Context) (store.ChatMessage, error) {
	return s.send(ctx, nil)
}

// Ask stages question and sends it in one step.
func (s *ChatSimulator) Ask(ctx context.Context, question string) (store.ChatMessage, error) {
	return s.send(ctx, &question)
}

func (s *ChatSimulator) send(ctx context.Context, staged *string) (store.ChatMessage, error) {
	s.mu.Lock()
	if s.waiting {
		s.mu.Unlock()
		return store.ChatMessage{}, ErrRoundTripInFlight
	}
	if staged != nil {
		s.pending = *staged
	}
	question := strings.TrimSpace(s.pending)
	if question == "" {
		s.mu.Unlock()
		return store.ChatMessage{}, ErrEmptyQuestion
	}

	s.transcript.Append(store.ChatMessage{Role: store.RoleUser, Content: question})
	s.pending = ""
	s.waiting = true
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)

	reply := store.ChatMessage{Role: store.RoleBot}
	answer, err := s.asker.Ask(ctx, question)
	if err != nil {
		s.logger.Warn("Chat round-trip failed", zap.String("question", question), zap.Error(err))
		reply.Content = s.fallback
	} else {
		reply.Content = answer
	}

	s.mu.Lock()
	s.transcript.Append(reply)
	s.waiting = false
	s.roundTrips++
	snap = s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return reply, nil
}

func (s *ChatSimulator) Snapshot() ChatSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *ChatSimulator) snapshotLocked() ChatSnapshot {
	return ChatSnapshot{
		Transcript:   s.transcript.Messages(),
		PendingInput: s.pending,
		Waiting:      s.waiting,
		RoundTrips:   s.roundTrips,
	}
}

func (s *ChatSimulator) notify(snap ChatSnapshot) {
	if s.observer != nil {
		s.observer(snap)
	}
}
