package guard

import (
	"net/url"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// Policy defines the limits for one conversation run.
type Policy struct {
	// MaxTurns bounds the tool dispatch loop. The model can chain tool
	// calls indefinitely otherwise, which is a resource-exhaustion risk.
	MaxTurns int `json:"max_turns" yaml:"max_turns"`

	// AllowedHosts are doublestar globs matched against hostnames of
	// outbound tool traffic (search, openInBrowser).
	AllowedHosts []string `json:"allowed_hosts" yaml:"allowed_hosts"`

	// SandboxTimeout bounds one sandboxed code execution.
	SandboxTimeout time.Duration `json:"sandbox_timeout" yaml:"sandbox_timeout"`

	// ResultClamp caps the encoded size of any tool payload.
	ResultClamp int `json:"result_clamp" yaml:"result_clamp"`
}

// DefaultPolicy provides safe defaults.
var DefaultPolicy = Policy{
	MaxTurns:       20,
	AllowedHosts:   []string{"*"},
	SandboxTimeout: 2 * time.Second,
	ResultClamp:    4000,
}

// Violation represents a specific breach of policy.
type Violation struct {
	Rule    string
	Message string
}

// Guard enforces the policy.
type Guard struct {
	policy Policy
}

func New(p Policy) *Guard {
	if p.MaxTurns <= 0 {
		p.MaxTurns = DefaultPolicy.MaxTurns
	}
	if p.SandboxTimeout <= 0 {
		p.SandboxTimeout = DefaultPolicy.SandboxTimeout
	}
	if p.ResultClamp <= 0 {
		p.ResultClamp = DefaultPolicy.ResultClamp
	}
	return &Guard{policy: p}
}

// Policy returns the guard's current policy configuration.
func (g *Guard) Policy() Policy {
	return g.policy
}

// CheckTurns verifies the dispatch loop is still within its turn budget.
func (g *Guard) CheckTurns(turn int) *Violation {
	if turn > g.policy.MaxTurns {
		return &Violation{Rule: "max_turns", Message: "maximum tool-call turns exceeded"}
	}
	return nil
}

// CheckHost verifies a URL's host is within the allowed globs.
func (g *Guard) CheckHost(rawURL string) *Violation {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return &Violation{Rule: "allowed_hosts", Message: "invalid URL: " + rawURL}
	}

	host := strings.ToLower(u.Hostname())
	for _, pattern := range g.policy.AllowedHosts {
		match, err := doublestar.Match(pattern, host)
		if err == nil && match {
			return nil
		}
	}
	return &Violation{Rule: "allowed_hosts", Message: "host not allowed: " + host}
}
