package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pythonicvarun/anveshak/internal/store"
)

// Entry is one persisted fact.
type Entry struct {
	Memory    string    `json:"memory"`
	Timestamp time.Time `json:"timestamp"`
}

// List is the flat, append-only memory list, persisted independently of
// chat sessions.
type List struct {
	kv store.KV
}

func NewList(kv store.KV) *List {
	return &List{kv: kv}
}

// Add appends a memory. Blank strings are rejected.
func (l *List) Add(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.New("memory must be a non-empty string")
	}

	entries, err := l.All()
	if err != nil {
		return err
	}

	entries = append(entries, Entry{Memory: text, Timestamp: time.Now().UTC()})
	return l.save(entries)
}

// All returns every stored memory in insertion order. A missing or
// corrupt record yields an empty list.
func (l *List) All() ([]Entry, error) {
	raw, err := l.kv.Get(store.KeyMemories)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, nil
	}
	return entries, nil
}

// Clear removes all memories.
func (l *List) Clear() error {
	return l.kv.Delete(store.KeyMemories)
}

func (l *List) save(entries []Entry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal memories: %w", err)
	}
	return l.kv.Put(store.KeyMemories, raw)
}

// PromptBlock renders the memory suffix appended to the system prompt.
// Returns the empty string when no memories are stored.
func (l *List) PromptBlock() string {
	entries, err := l.All()
	if err != nil || len(entries) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n\n---\n")
	sb.WriteString("Here are some memories you have saved. Use them for context, but do not mention them unless the user's query is directly related.\n")
	for _, e := range entries {
		sb.WriteString("- ")
		sb.WriteString(e.Memory)
		sb.WriteString("\n")
	}
	sb.WriteString("---\n")
	return sb.String()
}
