package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSQLiteKV(t *testing.T) {
	tmpDir, _ := os.MkdirTemp("", "kv-test-*")
	defer os.RemoveAll(tmpDir)

	kv, err := NewSQLiteKV(filepath.Join(tmpDir, "anveshak.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer kv.Close()

	t.Run("PutGet", func(t *testing.T) {
		if err := kv.Put(KeySettings, []byte(`{"model":"gpt-4o"}`)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}

		got, err := kv.Get(KeySettings)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(got) != `{"model":"gpt-4o"}` {
			t.Errorf("Unexpected value: %s", got)
		}
	})

	t.Run("Upsert", func(t *testing.T) {
		if err := kv.Put(KeyActive, []byte("chat_1")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if err := kv.Put(KeyActive, []byte("chat_2")); err != nil {
			t.Fatalf("Put overwrite failed: %v", err)
		}

		got, _ := kv.Get(KeyActive)
		if string(got) != "chat_2" {
			t.Errorf("Expected 'chat_2', got '%s'", got)
		}
	})

	t.Run("Missing", func(t *testing.T) {
		if _, err := kv.Get("no-such-record"); err != ErrNotFound {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		kv.Put("doomed", []byte("x"))
		if err := kv.Delete("doomed"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := kv.Get("doomed"); err != ErrNotFound {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("Keys", func(t *testing.T) {
		keys, err := kv.Keys()
		if err != nil {
			t.Fatalf("Keys failed: %v", err)
		}
		if len(keys) != 2 {
			t.Errorf("Expected 2 keys, got %d: %v", len(keys), keys)
		}
	})
}

func TestMemKV(t *testing.T) {
	kv := NewMemKV()
	defer kv.Close()

	if err := kv.Put(KeyMemories, []byte(`[]`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := kv.Get(KeyMemories)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != `[]` {
		t.Errorf("Unexpected value: %s", got)
	}

	// Returned slices must be copies.
	got[0] = 'X'
	again, _ := kv.Get(KeyMemories)
	if string(again) != `[]` {
		t.Error("Get returned a shared slice")
	}

	if _, err := kv.Get("missing"); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
