package guard

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writePolicy(t *testing.T, name, content string) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "guard-test-*")
	if err != nil {
		t.Fatalf("MkdirTemp failed: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestLoadPolicyYAML(t *testing.T) {
	path := writePolicy(t, "policy.yaml", `
max_turns: 5
allowed_hosts:
  - "*.example.com"
  - google.serper.dev
sandbox_timeout_ms: 1500
result_clamp: 2000
`)

	p, err := LoadPolicy(path)
	if err != nil {
		t.Fatalf("LoadPolicy failed: %v", err)
	}
	if p.MaxTurns != 5 {
		t.Errorf("expected MaxTurns 5, got %d", p.MaxTurns)
	}
	if len(p.AllowedHosts) != 2 || p.AllowedHosts[0] != "*.example.com" {
		t.Errorf("unexpected AllowedHosts: %v", p.AllowedHosts)
	}
	if p.SandboxTimeout != 1500*time.Millisecond {
		t.Errorf("expected 1.5s timeout, got %v", p.SandboxTimeout)
	}
	if p.ResultClamp != 2000 {
		t.Errorf("expected ResultClamp 2000, got %d", p.ResultClamp)
	}
}

func TestLoadPolicyJSON(t *testing.T) {
	path := writePolicy(t, "policy.json", `{"max_turns": 7, "allowed_hosts": ["*"]}`)

	p, err := LoadPolicy(path)
	if err != nil {
		t.Fatalf("LoadPolicy failed: %v", err)
	}
	if p.MaxTurns != 7 {
		t.Errorf("expected MaxTurns 7, got %d", p.MaxTurns)
	}

	// Unset fields fall back to defaults through New.
	if got := New(p).Policy().SandboxTimeout; got != 2*time.Second {
		t.Errorf("expected default timeout, got %v", got)
	}
}

func TestLoadPolicyUnsupported(t *testing.T) {
	path := writePolicy(t, "policy.toml", "max_turns = 5")
	if _, err := LoadPolicy(path); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestLoadPolicyMissing(t *testing.T) {
	if _, err := LoadPolicy("/nonexistent/policy.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}
