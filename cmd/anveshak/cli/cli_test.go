package cli

import (
	"os"
	"testing"

	"github.com/pythonicvarun/anveshak/internal/observe"
	"github.com/pythonicvarun/anveshak/internal/ui"
)

func TestCommandsRegistered(t *testing.T) {
	want := []string{"chat", "config", "sessions", "memories"}
	for _, name := range want {
		found := false
		for _, cmd := range RootCmd.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Command %s not registered", name)
		}
	}
}

func TestBuildAgent(t *testing.T) {
	tmpDir, _ := os.MkdirTemp("", "cli-test-*")
	defer os.RemoveAll(tmpDir)
	dataDir = tmpDir
	defer func() { dataDir = "" }()

	providerType = "stub"
	defer func() { providerType = "openai" }()

	kv := getKV()
	defer kv.Close()

	a, err := buildAgent(kv, observe.Noop(), &ui.Silent{})
	if err != nil {
		t.Fatalf("buildAgent failed: %v", err)
	}

	if a.Registry.Count() != 6 {
		t.Errorf("Expected 6 registered tools, got %d", a.Registry.Count())
	}
	for _, name := range []string{"googleSearch", "callAIPipe", "executeJavaScript", "openInBrowser", "addToMemory", "getMemories"} {
		if _, ok := a.Registry.Get(name); !ok {
			t.Errorf("Tool %s missing from registry", name)
		}
	}
}
