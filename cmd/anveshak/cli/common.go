package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pythonicvarun/anveshak/internal/agent"
	"github.com/pythonicvarun/anveshak/internal/config"
	"github.com/pythonicvarun/anveshak/internal/guard"
	"github.com/pythonicvarun/anveshak/internal/memory"
	"github.com/pythonicvarun/anveshak/internal/observe"
	"github.com/pythonicvarun/anveshak/internal/provider"
	"github.com/pythonicvarun/anveshak/internal/sandbox"
	"github.com/pythonicvarun/anveshak/internal/session"
	"github.com/pythonicvarun/anveshak/internal/store"
	"github.com/pythonicvarun/anveshak/internal/tools"
)

// dataDir allows tests to redirect storage away from the home directory.
var dataDir string

func getKV() store.KV {
	dir := dataDir
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".anveshak")
	}
	kv, err := store.NewSQLiteKV(filepath.Join(dir, "anveshak.db"))
	if err != nil {
		fmt.Printf("Failed to init store: %v\n", err)
		os.Exit(1)
	}
	return kv
}

// loadPolicy picks up an optional policy file from the data directory.
func loadPolicy() guard.Policy {
	dir := dataDir
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".anveshak")
	}

	for _, name := range []string{"policy.yaml", "policy.yml", "policy.json"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		p, err := guard.LoadPolicy(path)
		if err != nil {
			fmt.Printf("Ignoring invalid policy file %s: %v\n", path, err)
			break
		}
		return p
	}
	return guard.DefaultPolicy
}

func buildProvider(settings config.Settings) (provider.Provider, error) {
	model := settings.Model
	if modelName != "" {
		model = modelName
	}

	switch providerType {
	case "openai":
		return provider.NewOpenAIProvider(settings.APIKey, settings.BaseURL, model)
	case "ollama":
		return provider.NewOllamaProvider(model)
	case "stub":
		return &provider.StubProvider{}, nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", providerType)
	}
}

func buildAgent(kv store.KV, obs *observe.Observer, streamUI provider.StreamObserver) (*agent.Agent, error) {
	settings := config.Load(kv)
	if modelName != "" {
		settings.Model = modelName
	}

	p, err := buildProvider(settings)
	if err != nil {
		return nil, err
	}

	sessions, err := session.NewStore(kv, agent.SystemPrompt)
	if err != nil {
		return nil, err
	}

	memories := memory.NewList(kv)
	g := guard.New(loadPolicy())

	engine := sandbox.NewEngine()
	engine.Timeout = g.Policy().SandboxTimeout
	engine.Clamp = g.Policy().ResultClamp

	registry, err := tools.NewRegistry(
		tools.NewGoogleSearch(func() string { return config.Load(kv).SerperAPIKey }, g),
		&tools.CallAIPipe{},
		tools.NewExecuteJavaScript(engine),
		tools.NewOpenInBrowser(g),
		&tools.AddToMemory{List: memories},
		&tools.GetMemories{List: memories},
	)
	if err != nil {
		return nil, err
	}

	return agent.New(agent.Agent{
		Provider: p,
		Registry: registry,
		Sessions: sessions,
		Memories: memories,
		Settings: &settings,
		Guard:    g,
		Observer: obs,
		UI:       streamUI,
	})
}
