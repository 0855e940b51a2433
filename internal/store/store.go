package store

import "errors"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// KV is the durable key-value store the conversation core persists into.
// Records are opaque byte payloads (JSON-encoded by callers).
type KV interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
	Keys() ([]string, error)
	Close() error
}

// Well-known record names.
const (
	KeyChats    = "allChats"
	KeyActive   = "activeChat"
	KeySettings = "agentSettings"
	KeyMemories = "agentMemories"
)
