// Package tools holds the closed set of capabilities the assistant can
// invoke. The registry is assembled once at startup; nothing registers
// tools dynamically afterwards.
package tools

import (
	"context"
	"fmt"
	"sync"

	"github.com/pythonicvarun/anveshak/internal/provider"
)

// Tool is a single named capability. Invoke returns a JSON-encoded
// result string; a returned error is surfaced to the model as an error
// payload rather than aborting the conversation.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]interface{}
	Invoke(ctx context.Context, args map[string]interface{}) (string, error)
}

// Registry maps tool names to implementations.
type Registry struct {
	mu     sync.RWMutex
	order  []string
	byName map[string]Tool
}

func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{byName: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a tool. Duplicate names are rejected.
func (r *Registry) Register(t Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := t.Name()
	if name == "" {
		return fmt.Errorf("tool has no name")
	}
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}
	r.byName[name] = t
	r.order = append(r.order, name)
	return nil
}

// Get looks up a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[name]
	return t, ok
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

// Declarations renders the registry as tool declarations for a chat
// request, in registration order.
func (r *Registry) Declarations() []provider.ToolDecl {
	r.mu.RLock()
	defer r.mu.RUnlock()

	decls := make([]provider.ToolDecl, 0, len(r.order))
	for _, name := range r.order {
		t := r.byName[name]
		decls = append(decls, provider.ToolDecl{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return decls
}

func stringArg(args map[string]interface{}, key string) string {
	if args == nil {
		return ""
	}
	s, _ := args[key].(string)
	return s
}

func objectSchema(props map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}
