package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/pythonicvarun/anveshak/internal/provider"
)

// ErrMaxTurns reports that the dispatch loop hit its turn budget before
// the model produced a terminal (tool-free) response.
var ErrMaxTurns = errors.New("maximum tool-call turns exceeded")

// Send records a user message and runs the dispatch loop until the
// model answers without tool calls, the turn budget runs out, or the
// stream fails. A draft conversation is committed on the first message
// and retitled in the background.
func (a *Agent) Send(ctx context.Context, userText string) error {
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return errors.New("empty message")
	}

	if err := a.Sessions.Append(provider.Message{Role: "user", Content: userText}); err != nil {
		return err
	}

	if _, active := a.Sessions.Active(); !active {
		id, err := a.Sessions.CommitDraft(userText)
		if err != nil {
			return err
		}
		a.Bus.PublishWithData(EventDraftCommitted, id, nil)
		go a.Sessions.Retitle(context.Background(), a.Provider, a.Settings.Model, id, userText)
	}

	return a.run(ctx)
}

// run is the bounded tool dispatch loop. Each iteration streams one
// model response; tool calls extend the loop, a plain response ends it.
func (a *Agent) run(ctx context.Context) error {
	chatID, _ := a.Sessions.Active()
	log := a.Observer.Log()

	for turn := 1; ; turn++ {
		if v := a.Guard.CheckTurns(turn); v != nil {
			a.Bus.PublishWithData(EventGuardViolation, chatID, map[string]interface{}{
				"rule": v.Rule, "message": v.Message,
			})
			log.Warn().Str("chat", chatID).Int("turn", turn).Msg("turn budget exhausted")
			return ErrMaxTurns
		}

		a.Bus.PublishWithData(EventTurnStart, chatID, map[string]interface{}{"turn": turn})

		turnCtx, span := a.Observer.StartSpan(ctx, "conversation.turn")
		turnResult, err := a.streamTurn(turnCtx)
		span.End()
		if err != nil {
			a.Bus.PublishWithData(EventConversationError, chatID, map[string]interface{}{
				"error": err.Error(),
			})
			log.Error().Str("chat", chatID).Err(err).Msg("stream failed")
			return err
		}

		assistant := provider.Message{
			Role:      "assistant",
			Content:   turnResult.Content,
			Reasoning: turnResult.Reasoning,
			ToolCalls: turnResult.ToolCalls,
		}
		if err := a.Sessions.Append(assistant); err != nil {
			return err
		}

		a.Bus.PublishWithData(EventTurnEnd, chatID, map[string]interface{}{
			"turn": turn, "tool_calls": len(turnResult.ToolCalls),
		})

		if len(turnResult.ToolCalls) == 0 {
			a.Bus.PublishWithData(EventConversationDone, chatID, nil)
			return nil
		}

		for _, call := range turnResult.ToolCalls {
			a.Bus.PublishWithData(EventToolCallStart, chatID, map[string]interface{}{
				"tool": call.Name, "id": call.ID,
			})

			toolCtx, toolSpan := a.Observer.StartSpan(ctx, "tool."+call.Name)
			result := a.invokeTool(toolCtx, call)
			toolSpan.End()

			if err := a.Sessions.Append(provider.Message{
				Role:       "tool",
				ToolCallID: call.ID,
				Name:       call.Name,
				Content:    result,
			}); err != nil {
				return err
			}

			a.Bus.PublishWithData(EventToolCallEnd, chatID, map[string]interface{}{
				"tool": call.Name, "id": call.ID,
			})
			log.Info().Str("chat", chatID).Str("tool", call.Name).Msg("tool executed")
		}
	}
}

// streamTurn sends the current history and drains one response stream.
// Nothing is persisted when the stream fails mid-flight.
func (a *Agent) streamTurn(ctx context.Context) (*provider.DecodedTurn, error) {
	transport, err := a.Provider.Stream(ctx, a.buildRequest())
	if err != nil {
		return nil, err
	}
	defer transport.Close()

	return a.Decoder.Drain(transport, a.UI)
}

// buildRequest assembles the outbound message list: the dynamic system
// prompt (base plus memories) followed by the stored history with
// reasoning stripped from assistant messages.
func (a *Agent) buildRequest() provider.ChatRequest {
	history := a.Sessions.History()

	msgs := make([]provider.Message, 0, len(history))
	msgs = append(msgs, provider.Message{Role: "system", Content: a.systemContent()})
	for _, m := range history {
		if m.Role == "system" {
			continue
		}
		m.Reasoning = ""
		msgs = append(msgs, m)
	}

	req := provider.ChatRequest{Model: a.Settings.Model, Messages: msgs}
	if a.Settings.ToolsEnabled {
		req.Tools = a.Registry.Declarations()
	}
	return req
}

// invokeTool resolves and executes one tool call. Failures of any kind
// become error payloads in the transcript; the loop itself never aborts
// on a tool error.
func (a *Agent) invokeTool(ctx context.Context, call provider.ToolCall) string {
	tool, ok := a.Registry.Get(call.Name)
	if !ok {
		return errorJSON("unknown tool: " + call.Name)
	}

	out, err := tool.Invoke(ctx, decodeArgs(call.Args))
	if err != nil {
		return errorJSON(err.Error())
	}
	return out
}

// decodeArgs parses tool-call arguments, repairing malformed JSON when
// possible. Unrecoverable input degrades to an empty argument map.
func decodeArgs(raw string) map[string]interface{} {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]interface{}{}
	}

	var args map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &args); err == nil && args != nil {
		return args
	}

	repaired, err := jsonrepair.JSONRepair(raw)
	if err == nil {
		if err := json.Unmarshal([]byte(repaired), &args); err == nil && args != nil {
			return args
		}
	}
	return map[string]interface{}{}
}

func errorJSON(msg string) string {
	out, _ := json.Marshal(map[string]string{"error": msg})
	return string(out)
}
