package provider

import (
	"context"
	"io"
	"sync"
)

// ScriptedTransport replays a fixed event sequence. The terminal error
// (nil for a clean end) is returned after the events are exhausted.
type ScriptedTransport struct {
	Events   []StreamEvent
	Terminal error
	Closed   bool

	pos int
}

func (t *ScriptedTransport) Next() (*StreamEvent, error) {
	if t.pos >= len(t.Events) {
		if t.Terminal != nil {
			return nil, t.Terminal
		}
		return nil, io.EOF
	}
	ev := t.Events[t.pos]
	t.pos++
	return &ev, nil
}

func (t *ScriptedTransport) Close() error {
	t.Closed = true
	return nil
}

// StubProvider replays canned turns. Used in tests and for offline dry runs.
type StubProvider struct {
	Turns  []ScriptedTransport
	Titles []string

	mu       sync.Mutex
	requests []ChatRequest
	turnPos  int
	titlePos int
}

func (s *StubProvider) Stream(ctx context.Context, req ChatRequest) (Transport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)

	if s.turnPos >= len(s.Turns) {
		return &ScriptedTransport{}, nil
	}
	t := &s.Turns[s.turnPos]
	s.turnPos++
	return t, nil
}

func (s *StubProvider) Complete(ctx context.Context, req ChatRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)

	if s.titlePos >= len(s.Titles) {
		return "", nil
	}
	title := s.Titles[s.titlePos]
	s.titlePos++
	return title, nil
}

// RequestLog returns a copy of every request seen, in order.
func (s *StubProvider) RequestLog() []ChatRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ChatRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *StubProvider) ListModels(ctx context.Context) ([]string, error) {
	return []string{"stub-small", "stub-large"}, nil
}

func (s *StubProvider) Name() string {
	return "stub"
}
