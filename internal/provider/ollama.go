package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"

	"github.com/google/uuid"
	"github.com/ollama/ollama/api"
)

// OllamaProvider talks to a local ollama daemon, which streams the same
// delta shape the dispatch loop consumes.
type OllamaProvider struct {
	client *api.Client
	model  string
}

func NewOllamaProvider(model string) (*OllamaProvider, error) {
	if model == "" {
		model = "llama3.2"
	}

	baseURL := "http://localhost:11434"
	if envURL := os.Getenv("OLLAMA_HOST"); envURL != "" {
		baseURL = envURL
	}
	uri, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host: %w", err)
	}

	return &OllamaProvider{
		client: api.NewClient(uri, http.DefaultClient),
		model:  model,
	}, nil
}

func (p *OllamaProvider) Name() string {
	return "ollama"
}

type ollamaItem struct {
	ev  *StreamEvent
	err error
}

// ollamaTransport pumps the callback-driven ollama stream through a
// channel so Next keeps the pull-based transport contract.
type ollamaTransport struct {
	items  chan ollamaItem
	cancel context.CancelFunc
}

func (p *OllamaProvider) Stream(ctx context.Context, req ChatRequest) (Transport, error) {
	streamCtx, cancel := context.WithCancel(ctx)

	t := &ollamaTransport{
		items:  make(chan ollamaItem, 8),
		cancel: cancel,
	}

	apiReq := &api.ChatRequest{
		Model:    p.modelFor(req),
		Messages: convertOllamaMessages(req.Messages),
		Tools:    convertOllamaTools(req.Tools),
	}

	go func() {
		defer close(t.items)

		var content string
		var calls []ToolCall

		err := p.client.Chat(streamCtx, apiReq, func(resp api.ChatResponse) error {
			ev := &StreamEvent{Reasoning: resp.Message.Thinking}

			if resp.Message.Content != "" {
				content += resp.Message.Content
				ev.Content = content
			}

			for _, tc := range resp.Message.ToolCalls {
				argsBytes, _ := json.Marshal(tc.Function.Arguments)
				calls = append(calls, ToolCall{
					ID:   "call_" + uuid.NewString(),
					Name: tc.Function.Name,
					Args: string(argsBytes),
				})
			}
			if len(calls) > 0 {
				ev.ToolCalls = make([]ToolCall, len(calls))
				copy(ev.ToolCalls, calls)
			}

			select {
			case t.items <- ollamaItem{ev: ev}:
				return nil
			case <-streamCtx.Done():
				return streamCtx.Err()
			}
		})
		if err != nil {
			t.items <- ollamaItem{err: &StreamError{Err: err}}
		}
	}()

	return t, nil
}

func (t *ollamaTransport) Next() (*StreamEvent, error) {
	item, ok := <-t.items
	if !ok {
		return nil, io.EOF
	}
	return item.ev, item.err
}

func (t *ollamaTransport) Close() error {
	t.cancel()
	return nil
}

func (p *OllamaProvider) Complete(ctx context.Context, req ChatRequest) (string, error) {
	apiReq := &api.ChatRequest{
		Model:    p.modelFor(req),
		Messages: convertOllamaMessages(req.Messages),
		Stream:   new(bool), // false
	}

	var content string
	err := p.client.Chat(ctx, apiReq, func(resp api.ChatResponse) error {
		content += resp.Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat failed: %w", err)
	}
	return content, nil
}

func (p *OllamaProvider) ListModels(ctx context.Context) ([]string, error) {
	resp, err := p.client.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	names := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		names = append(names, m.Name)
	}
	sort.Strings(names)
	return names, nil
}

func (p *OllamaProvider) modelFor(req ChatRequest) string {
	if req.Model != "" {
		return req.Model
	}
	return p.model
}

func convertOllamaMessages(messages []Message) []api.Message {
	var out []api.Message
	for _, m := range messages {
		out = append(out, api.Message{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	return out
}

func convertOllamaTools(decls []ToolDecl) []api.Tool {
	var tools []api.Tool
	for _, d := range decls {
		props := api.NewToolPropertiesMap()
		if rawProps, ok := d.Parameters["properties"].(map[string]interface{}); ok {
			for name, rv := range rawProps {
				pm, _ := rv.(map[string]interface{})
				prop := api.ToolProperty{}
				if ts, ok := pm["type"].(string); ok {
					prop.Type = api.PropertyType{ts}
				}
				if ds, ok := pm["description"].(string); ok {
					prop.Description = ds
				}
				props.Set(name, prop)
			}
		}

		var required []string
		switch raw := d.Parameters["required"].(type) {
		case []string:
			required = raw
		case []interface{}:
			for _, r := range raw {
				required = append(required, fmt.Sprint(r))
			}
		}

		tools = append(tools, api.Tool{
			Type: "function",
			Function: api.ToolFunction{
				Name:        d.Name,
				Description: d.Description,
				Parameters: api.ToolFunctionParameters{
					Type:       "object",
					Properties: props,
					Required:   required,
				},
			},
		})
	}
	return tools
}
