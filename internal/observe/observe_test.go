package observe

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	buf := &bytes.Buffer{}
	obs := New(buf, true)

	if obs == nil {
		t.Fatal("expected non-nil Observer")
	}

	obs.Log().Info().Msg("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("expected output to contain 'hello', got %q", buf.String())
	}
}

func TestVerboseGate(t *testing.T) {
	buf := &bytes.Buffer{}
	obs := NewJSON(buf, false)

	obs.Log().Info().Msg("suppressed")
	if strings.Contains(buf.String(), "suppressed") {
		t.Error("info log should be gated when not verbose")
	}

	obs.Log().Warn().Msg("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("warn log should pass the gate, got %q", buf.String())
	}
}

func TestLogWithFields(t *testing.T) {
	buf := &bytes.Buffer{}
	obs := New(buf, true)

	obs.Log().Info().
		Str("chat", "chat_1").
		Int("turn", 3).
		Msg("turn complete")

	output := buf.String()
	if !strings.Contains(output, "turn complete") {
		t.Errorf("expected output to contain 'turn complete', got %q", output)
	}
}

func TestStartSpan(t *testing.T) {
	obs := Noop()

	ctx, span := obs.StartSpan(context.Background(), "turn")
	if ctx == nil {
		t.Fatal("expected non-nil context from StartSpan")
	}
	if span == nil {
		t.Fatal("expected non-nil span from StartSpan")
	}
	span.End()

	if err := obs.Close(); err != nil {
		t.Errorf("expected nil error from Close, got %v", err)
	}
}
