package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pythonicvarun/anveshak/internal/provider"
	"github.com/pythonicvarun/anveshak/internal/store"
)

var (
	// ErrNotDraft is returned when a draft-only operation runs against a
	// committed session.
	ErrNotDraft = errors.New("no draft in progress")

	// ErrNoSession is returned for unknown session ids.
	ErrNoSession = errors.New("session not found")
)

const namePreviewLen = 15

// Store owns the session map, the active/draft pointer, and the live
// in-memory history. All mutations go through its methods and are
// persisted before returning.
type Store struct {
	mu       sync.Mutex
	kv       store.KV
	system   provider.Message
	sessions map[string]*ChatSession
	activeID string
	draft    bool
	live     []provider.Message
}

// NewStore creates a Store and loads persisted state. An empty or
// missing session map yields a fresh draft.
func NewStore(kv store.KV, systemPrompt string) (*Store, error) {
	s := &Store{
		kv:     kv,
		system: provider.Message{Role: "system", Content: systemPrompt},
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load replaces in-memory state with the persisted records.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = make(map[string]*ChatSession)

	raw, err := s.kv.Get(store.KeyChats)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if len(raw) > 0 {
		var m map[string]*ChatSession
		if err := json.Unmarshal(raw, &m); err != nil {
			return fmt.Errorf("failed to decode session map: %w", err)
		}
		for id, sess := range m {
			if sess != nil && len(sess.History) > 0 {
				s.sessions[id] = sess
			}
		}
	}

	if len(s.sessions) == 0 {
		s.startDraftLocked()
		return nil
	}

	activeID := ""
	if rawActive, err := s.kv.Get(store.KeyActive); err == nil {
		activeID = string(rawActive)
	}
	if _, ok := s.sessions[activeID]; !ok {
		// Fall back to any existing session, newest first.
		activeID = s.sortedIDsLocked()[0]
	}

	s.activeID = activeID
	s.draft = false
	s.live = append([]provider.Message(nil), s.sessions[activeID].History...)
	return nil
}

// StartDraft syncs the active session and resets the working state to a
// fresh, uncommitted conversation.
func (s *Store) StartDraft() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.startDraftLocked()
	return s.persistLocked()
}

func (s *Store) startDraftLocked() {
	s.syncActiveLocked()
	s.activeID = ""
	s.draft = true
	s.live = []provider.Message{s.system}
}

// SwitchTo loads the target session's history into the working state.
func (s *Store) SwitchTo(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSession, id)
	}

	s.syncActiveLocked()
	s.activeID = id
	s.draft = false
	s.live = append([]provider.Message(nil), target.History...)
	return s.persistLocked()
}

// CommitDraft promotes the draft to a persisted session. The live
// history already contains the user's first message; the session name is
// a truncated preview of it.
func (s *Store) CommitDraft(firstUserText string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.draft {
		return "", ErrNotDraft
	}

	now := time.Now().UTC()
	sess := &ChatSession{
		ID:        "chat_" + uuid.NewString(),
		Name:      namePreview(firstUserText),
		History:   append([]provider.Message(nil), s.live...),
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.sessions[sess.ID] = sess
	s.activeID = sess.ID
	s.draft = false

	if err := s.persistLocked(); err != nil {
		return "", err
	}
	return sess.ID, nil
}

// Append adds a message to the live history and, outside draft mode,
// mirrors it into the active session. Persisted before returning.
func (s *Store) Append(msg provider.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.live = append(s.live, msg)
	if !s.draft {
		if sess, ok := s.sessions[s.activeID]; ok {
			sess.History = append([]provider.Message(nil), s.live...)
			sess.UpdatedAt = time.Now().UTC()
		}
	}
	return s.persistLocked()
}

// Rename sets a session's display name.
func (s *Store) Rename(id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSession, id)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("session name must be non-empty")
	}

	sess.Name = name
	sess.UpdatedAt = time.Now().UTC()
	return s.persistLocked()
}

// Delete removes a session. Deleting the active session falls back to
// another existing session, or to a fresh draft when none remain.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNoSession, id)
	}
	delete(s.sessions, id)

	if id == s.activeID {
		s.activeID = ""
		if ids := s.sortedIDsLocked(); len(ids) > 0 {
			s.activeID = ids[0]
			s.draft = false
			s.live = append([]provider.Message(nil), s.sessions[ids[0]].History...)
		} else {
			s.draft = true
			s.live = []provider.Message{s.system}
		}
	}
	return s.persistLocked()
}

// ClearActive resets the current conversation to just the system message.
func (s *Store) ClearActive() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.live = []provider.Message{s.system}
	if !s.draft {
		if sess, ok := s.sessions[s.activeID]; ok {
			sess.History = []provider.Message{s.system}
			sess.UpdatedAt = time.Now().UTC()
		}
	}
	return s.persistLocked()
}

// ClearAll removes every session and starts a fresh draft.
func (s *Store) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = make(map[string]*ChatSession)
	s.activeID = ""
	s.draft = true
	s.live = []provider.Message{s.system}
	return s.persistLocked()
}

// History returns a copy of the live working history.
func (s *Store) History() []provider.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]provider.Message(nil), s.live...)
}

// Active reports the active session id ("" while drafting) and whether
// the working state is a draft.
func (s *Store) Active() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.activeID, s.draft
}

// Get returns a copy of one session.
func (s *Store) Get(id string) (*ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSession, id)
	}
	return sess.clone(), nil
}

// List returns all sessions, most recently updated first.
func (s *Store) List() []*ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*ChatSession, 0, len(s.sessions))
	for _, id := range s.sortedIDsLocked() {
		out = append(out, s.sessions[id].clone())
	}
	return out
}

// Persist reconciles and writes the durable records.
func (s *Store) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.persistLocked()
}

// Retitle asks the model for a short descriptive session title. Failures
// are swallowed; the preview name stays in place.
func (s *Store) Retitle(ctx context.Context, p provider.Provider, model, id, firstUserText string) {
	title, err := p.Complete(ctx, provider.ChatRequest{
		Model: model,
		Messages: []provider.Message{
			{
				Role:    "system",
				Content: "You are an AI assistant that creates short, descriptive titles for chat conversations based on the user's first message. The title should be 3-5 words maximum. Respond only with the title itself, without any prefixes, suffixes, or quotation marks.",
			},
			{Role: "user", Content: firstUserText},
		},
	})
	if err != nil {
		return
	}

	title = strings.Trim(strings.TrimSpace(title), `"'`)
	if title == "" || len(title) > 50 {
		return
	}
	_ = s.Rename(id, title)
}

// syncActiveLocked copies the live history back into the active session
// before any pointer change or durable write.
func (s *Store) syncActiveLocked() {
	if s.draft {
		return
	}
	if sess, ok := s.sessions[s.activeID]; ok {
		sess.History = append([]provider.Message(nil), s.live...)
		sess.UpdatedAt = time.Now().UTC()
	}
}

func (s *Store) persistLocked() error {
	s.syncActiveLocked()

	raw, err := json.Marshal(s.sessions)
	if err != nil {
		return fmt.Errorf("failed to marshal session map: %w", err)
	}
	if err := s.kv.Put(store.KeyChats, raw); err != nil {
		return err
	}

	if s.draft {
		return s.kv.Delete(store.KeyActive)
	}
	return s.kv.Put(store.KeyActive, []byte(s.activeID))
}

func (s *Store) sortedIDsLocked() []string {
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := s.sessions[ids[i]], s.sessions[ids[j]]
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return ids[i] < ids[j]
	})
	return ids
}

func namePreview(text string) string {
	text = strings.TrimSpace(text)
	if len(text) > namePreviewLen {
		return text[:namePreviewLen] + "..."
	}
	return text
}
