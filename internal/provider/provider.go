package provider

import (
	"context"
	"fmt"
)

// Message represents one turn in a conversation.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	Reasoning  string     `json:"reasoning,omitempty"` // local-only, stripped before re-send
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"` // For tool results
	Name       string     `json:"name,omitempty"`         // Tool name on tool-role messages
}

// ToolCall is a model-requested tool invocation, correlated by an opaque id.
type ToolCall struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Args string `json:"args"` // JSON-encoded arguments
}

// ToolDecl is a tool declaration advertised to the completion service.
type ToolDecl struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// ChatRequest carries everything one completion call needs.
type ChatRequest struct {
	Model    string
	Messages []Message
	Tools    []ToolDecl
}

// StreamEvent is one decoded protocol event from the completion service.
// Content carries the cumulative content string observed so far; Reasoning
// carries an incremental delta; ToolCalls carries the materialized list
// once the transport has assembled it.
type StreamEvent struct {
	Content   string
	Reasoning string
	ToolCalls []ToolCall
}

// Transport is a lazy, in-order, non-restartable stream of events.
// Next returns io.EOF on clean stream end and a *StreamError on a
// protocol-level failure.
type Transport interface {
	Next() (*StreamEvent, error)
	Close() error
}

// StreamError is a protocol error carried inside the event stream.
// It aborts the turn; partial accumulators are discarded by the caller.
type StreamError struct {
	Payload string
	Err     error
}

func (e *StreamError) Error() string {
	if e.Payload != "" {
		return fmt.Sprintf("stream error: %s", e.Payload)
	}
	return fmt.Sprintf("stream error: %v", e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// Provider defines the interface for completion-service interactions.
type Provider interface {
	// Stream opens a streaming completion for the request.
	Stream(ctx context.Context, req ChatRequest) (Transport, error)

	// Complete performs a one-shot non-streaming completion. Used for
	// background refinements like chat retitling.
	Complete(ctx context.Context, req ChatRequest) (string, error)

	// ListModels returns the ids of the models the endpoint offers.
	ListModels(ctx context.Context) ([]string, error)

	// Name returns the provider identifier (e.g. "openai", "ollama").
	Name() string
}
