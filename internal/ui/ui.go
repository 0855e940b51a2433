// Package ui renders conversation progress. The dispatch loop only
// knows the StreamObserver and event bus contracts; rendering stays out
// of the core.
package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pythonicvarun/anveshak/internal/agent"
	"github.com/pythonicvarun/anveshak/internal/provider"
)

// Silent drops all progress output.
type Silent struct {
	provider.NopObserver
}

// Console streams assistant output to a writer as it arrives. Content
// events carry the cumulative text, so only the unseen suffix is
// printed.
type Console struct {
	mu       sync.Mutex
	out      io.Writer
	printed  string
	thinking bool
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// Attach subscribes the console to conversation events.
func (c *Console) Attach(bus *agent.EventBus) {
	bus.Subscribe(agent.EventTurnStart, func(agent.Event) {
		c.Reset()
	})
	bus.Subscribe(agent.EventToolCallStart, func(ev agent.Event) {
		c.mu.Lock()
		defer c.mu.Unlock()
		fmt.Fprintf(c.out, "\n[tool] %v\n", ev.Data["tool"])
	})
	bus.Subscribe(agent.EventConversationDone, func(agent.Event) {
		c.mu.Lock()
		defer c.mu.Unlock()
		fmt.Fprintln(c.out)
	})
	bus.Subscribe(agent.EventGuardViolation, func(ev agent.Event) {
		c.mu.Lock()
		defer c.mu.Unlock()
		fmt.Fprintf(c.out, "\n[guard] %v\n", ev.Data["message"])
	})
}

func (c *Console) OnThinking() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.thinking {
		return
	}
	c.thinking = true
	fmt.Fprintln(c.out, "[thinking]")
}

func (c *Console) OnReasoning(delta string) {}

func (c *Console) OnContent(cumulative string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if strings.HasPrefix(cumulative, c.printed) {
		io.WriteString(c.out, cumulative[len(c.printed):])
	} else {
		// The stream restarted the message; reprint from scratch.
		io.WriteString(c.out, "\n"+cumulative)
	}
	c.printed = cumulative
}

func (c *Console) OnToolCalls(calls []provider.ToolCall) {}

func (c *Console) OnStreamError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "\n[error] %v\n", err)
}

// Reset clears the printed-content watermark between turns.
func (c *Console) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.printed = ""
	c.thinking = false
}
