package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pythonicvarun/anveshak/internal/agent"
)

func TestConsoleCumulativeContent(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.OnContent("Hel")
	c.OnContent("Hello")
	c.OnContent("Hello world")

	if buf.String() != "Hello world" {
		t.Errorf("Cumulative events must print each suffix once, got %q", buf.String())
	}
}

func TestConsoleThinkingOnce(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.OnThinking()
	c.OnThinking()

	if got := strings.Count(buf.String(), "[thinking]"); got != 1 {
		t.Errorf("Expected one thinking marker, got %d", got)
	}
}

func TestConsoleResetBetweenTurns(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	bus := agent.NewEventBus()
	c.Attach(bus)

	c.OnContent("first")
	bus.PublishWithData(agent.EventTurnStart, "chat", nil)
	c.OnContent("second")

	if !strings.Contains(buf.String(), "second") {
		t.Errorf("Content after reset lost: %q", buf.String())
	}
}

func TestConsoleToolEvents(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	bus := agent.NewEventBus()
	c.Attach(bus)

	bus.PublishWithData(agent.EventToolCallStart, "chat", map[string]interface{}{"tool": "googleSearch"})

	if !strings.Contains(buf.String(), "googleSearch") {
		t.Errorf("Tool activity not rendered: %q", buf.String())
	}
}
