package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider speaks the OpenAI-compatible chat completion protocol.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

func NewOpenAIProvider(apiKey, baseURL, model string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, errors.New("API key is required")
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}, nil
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

func (p *OpenAIProvider) Stream(ctx context.Context, req ChatRequest) (Transport, error) {
	stream, err := p.client.CreateChatCompletionStream(ctx, p.buildRequest(req, true))
	if err != nil {
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}
	return &openaiTransport{stream: stream}, nil
}

func (p *OpenAIProvider) Complete(ctx context.Context, req ChatRequest) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, p.buildRequest(req, false))
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) ListModels(ctx context.Context) ([]string, error) {
	list, err := p.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		ids = append(ids, m.ID)
	}
	sort.Strings(ids)
	return ids, nil
}

func (p *OpenAIProvider) buildRequest(req ChatRequest, stream bool) openai.ChatCompletionRequest {
	model := req.Model
	if model == "" {
		model = p.model
	}

	out := openai.ChatCompletionRequest{
		Model:    model,
		Messages: convertMessages(req.Messages),
		Stream:   stream,
	}

	if len(req.Tools) > 0 {
		for _, decl := range req.Tools {
			out.Tools = append(out.Tools, openai.Tool{
				Type: openai.ToolTypeFunction,
				Function: &openai.FunctionDefinition{
					Name:        decl.Name,
					Description: decl.Description,
					Parameters:  decl.Parameters,
				},
			})
		}
		out.ToolChoice = "auto"
	}

	return out
}

func convertMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		msg := openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		}

		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Args,
				},
			})
		}

		if m.ToolCallID != "" {
			msg.ToolCallID = m.ToolCallID
			msg.Name = m.Name
		}

		out[i] = msg
	}
	return out
}

// openaiTransport adapts the SDK's incremental deltas to the cumulative
// event contract: content accumulates here, and fragmented tool-call
// deltas are materialized into whole calls before being emitted.
type openaiTransport struct {
	stream  *openai.ChatCompletionStream
	content string
	calls   []ToolCall
}

func (t *openaiTransport) Next() (*StreamEvent, error) {
	resp, err := t.stream.Recv()
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	if err != nil {
		return nil, &StreamError{Err: err}
	}

	ev := &StreamEvent{}
	if len(resp.Choices) == 0 {
		return ev, nil
	}

	delta := resp.Choices[0].Delta
	if delta.Content != "" {
		t.content += delta.Content
		ev.Content = t.content
	}
	ev.Reasoning = delta.ReasoningContent

	for _, frag := range delta.ToolCalls {
		idx := len(t.calls) - 1
		if frag.Index != nil {
			idx = *frag.Index
		}
		for len(t.calls) <= idx {
			t.calls = append(t.calls, ToolCall{})
		}
		if idx < 0 {
			continue
		}
		if frag.ID != "" {
			t.calls[idx].ID = frag.ID
		}
		if frag.Function.Name != "" {
			t.calls[idx].Name = frag.Function.Name
		}
		t.calls[idx].Args += frag.Function.Arguments
	}

	if len(t.calls) > 0 {
		ev.ToolCalls = make([]ToolCall, len(t.calls))
		copy(ev.ToolCalls, t.calls)
	}

	return ev, nil
}

func (t *openaiTransport) Close() error {
	return t.stream.Close()
}
