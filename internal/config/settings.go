package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pythonicvarun/anveshak/internal/provider"
	"github.com/pythonicvarun/anveshak/internal/store"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Settings is the connection configuration. The core only reads it; the
// settings surface (CLI flags, forms) writes it through Save.
type Settings struct {
	BaseURL      string   `json:"baseUrl"`
	APIKey       string   `json:"apiKey"`
	SerperAPIKey string   `json:"serperApiKey"`
	Model        string   `json:"model"`
	Models       []string `json:"models"`
	ToolsEnabled bool     `json:"toolsEnabled"`
}

// Load reads the settings record and applies defaults. A missing or
// corrupt record yields pure defaults.
func Load(kv store.KV) Settings {
	s := Settings{
		BaseURL:      defaultBaseURL,
		ToolsEnabled: true,
	}

	raw, err := kv.Get(store.KeySettings)
	if errors.Is(err, store.ErrNotFound) || err != nil {
		return s
	}

	var saved struct {
		BaseURL      string   `json:"baseUrl"`
		APIKey       string   `json:"apiKey"`
		SerperAPIKey string   `json:"serperApiKey"`
		Model        string   `json:"model"`
		Models       []string `json:"models"`
		ToolsEnabled *bool    `json:"toolsEnabled"`
	}
	if err := json.Unmarshal(raw, &saved); err != nil {
		return s
	}

	if saved.BaseURL != "" {
		s.BaseURL = saved.BaseURL
	}
	s.APIKey = saved.APIKey
	s.SerperAPIKey = saved.SerperAPIKey
	s.Model = saved.Model
	s.Models = saved.Models
	if saved.ToolsEnabled != nil {
		s.ToolsEnabled = *saved.ToolsEnabled
	}
	return s
}

// Save writes the settings record.
func Save(kv store.KV, s Settings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	return kv.Put(store.KeySettings, raw)
}

// FetchModels refreshes the available model list from the provider and
// persists it. The first model becomes the default when none is set.
func FetchModels(ctx context.Context, kv store.KV, p provider.Provider, s *Settings) error {
	models, err := p.ListModels(ctx)
	if err != nil {
		return err
	}

	s.Models = models
	if s.Model == "" && len(models) > 0 {
		s.Model = models[0]
	}
	return Save(kv, *s)
}
