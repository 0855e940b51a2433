package tools

import (
	"context"
	"encoding/json"

	"github.com/pythonicvarun/anveshak/internal/memory"
)

// AddToMemory persists a fact across conversations.
type AddToMemory struct {
	List *memory.List
}

func (t *AddToMemory) Name() string { return "addToMemory" }

func (t *AddToMemory) Description() string {
	return "Save a memory string to persistent storage."
}

func (t *AddToMemory) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"memory": map[string]interface{}{
			"type":        "string",
			"description": "The memory to save.",
		},
	}, "memory")
}

func (t *AddToMemory) Invoke(ctx context.Context, args map[string]interface{}) (string, error) {
	if err := t.List.Add(stringArg(args, "memory")); err != nil {
		return memoryResult(false, "Memory must be a non-empty string."), nil
	}
	return memoryResult(true, "Memory saved."), nil
}

func memoryResult(ok bool, msg string) string {
	out, _ := json.Marshal(map[string]interface{}{
		"success": ok,
		"message": msg,
	})
	return string(out)
}

// GetMemories returns every stored memory.
type GetMemories struct {
	List *memory.List
}

func (t *GetMemories) Name() string        { return "getMemories" }
func (t *GetMemories) Description() string { return "Retrieve all saved memories." }

func (t *GetMemories) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{})
}

func (t *GetMemories) Invoke(ctx context.Context, args map[string]interface{}) (string, error) {
	entries, err := t.List.All()
	if err != nil {
		return "[]", nil
	}
	if entries == nil {
		entries = []memory.Entry{}
	}
	out, err := json.Marshal(entries)
	if err != nil {
		return "[]", nil
	}
	return string(out), nil
}
