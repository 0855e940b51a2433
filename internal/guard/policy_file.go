package guard

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// filePolicy is the on-disk schema. Timeouts are plain milliseconds so
// the same file round-trips through JSON and YAML.
type filePolicy struct {
	MaxTurns         int      `json:"max_turns" yaml:"max_turns"`
	AllowedHosts     []string `json:"allowed_hosts" yaml:"allowed_hosts"`
	SandboxTimeoutMS int      `json:"sandbox_timeout_ms" yaml:"sandbox_timeout_ms"`
	ResultClamp      int      `json:"result_clamp" yaml:"result_clamp"`
}

// LoadPolicy reads a policy file (JSON or YAML). Missing fields keep
// their defaults when the result is passed to New.
func LoadPolicy(path string) (Policy, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return Policy{}, fmt.Errorf("failed to read policy file: %w", err)
	}

	var fp filePolicy
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &fp); err != nil {
			return Policy{}, fmt.Errorf("failed to unmarshal JSON policy: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &fp); err != nil {
			return Policy{}, fmt.Errorf("failed to unmarshal YAML policy: %w", err)
		}
	default:
		return Policy{}, fmt.Errorf("unsupported policy format: %s (use .json or .yaml)", ext)
	}

	return Policy{
		MaxTurns:       fp.MaxTurns,
		AllowedHosts:   fp.AllowedHosts,
		SandboxTimeout: time.Duration(fp.SandboxTimeoutMS) * time.Millisecond,
		ResultClamp:    fp.ResultClamp,
	}, nil
}
