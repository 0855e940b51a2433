package config

import (
	"context"
	"testing"

	"github.com/pythonicvarun/anveshak/internal/provider"
	"github.com/pythonicvarun/anveshak/internal/store"
)

func TestLoadDefaults(t *testing.T) {
	s := Load(store.NewMemKV())

	if s.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("Unexpected default base URL: %q", s.BaseURL)
	}
	if !s.ToolsEnabled {
		t.Error("Tools should be enabled by default")
	}
	if s.APIKey != "" || s.Model != "" {
		t.Errorf("Expected empty credentials, got %+v", s)
	}
}

func TestRoundTrip(t *testing.T) {
	kv := store.NewMemKV()

	in := Settings{
		BaseURL:      "https://llm.internal/v1",
		APIKey:       "sk-test",
		Model:        "gpt-4o-mini",
		Models:       []string{"gpt-4o", "gpt-4o-mini"},
		ToolsEnabled: false,
	}
	if err := Save(kv, in); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	out := Load(kv)
	if out.BaseURL != in.BaseURL || out.APIKey != in.APIKey || out.Model != in.Model {
		t.Errorf("Round trip mismatch: %+v", out)
	}
	if out.ToolsEnabled {
		t.Error("Saved ToolsEnabled=false must survive the round trip")
	}
}

func TestLoadCorrupt(t *testing.T) {
	kv := store.NewMemKV()
	kv.Put(store.KeySettings, []byte("{broken"))

	s := Load(kv)
	if s.BaseURL != "https://api.openai.com/v1" || !s.ToolsEnabled {
		t.Errorf("Corrupt record must yield defaults, got %+v", s)
	}
}

func TestFetchModels(t *testing.T) {
	kv := store.NewMemKV()
	p := &provider.StubProvider{}

	s := Load(kv)
	if err := FetchModels(context.Background(), kv, p, &s); err != nil {
		t.Fatalf("FetchModels failed: %v", err)
	}

	if len(s.Models) != 2 {
		t.Fatalf("Expected 2 models, got %v", s.Models)
	}
	if s.Model != "stub-small" {
		t.Errorf("First model should become the default, got %q", s.Model)
	}

	reloaded := Load(kv)
	if len(reloaded.Models) != 2 {
		t.Errorf("Model list must be persisted, got %v", reloaded.Models)
	}
}
