package provider

import (
	"errors"
	"io"
)

// ContentMode selects how the decoder folds content events into the
// working content. The observed transports deliver the cumulative string
// on each event, so Replace is the default; Append is available for
// endpoints that emit additive fragments instead.
type ContentMode int

const (
	ContentReplace ContentMode = iota
	ContentAppend
)

// StreamObserver receives each incremental delta as it arrives.
type StreamObserver interface {
	// OnThinking fires exactly once per turn, before the first reasoning
	// or tool-call event is delivered.
	OnThinking()
	OnReasoning(delta string)
	OnContent(content string)
	OnToolCalls(calls []ToolCall)
	OnStreamError(err error)
}

// NopObserver discards all deltas.
type NopObserver struct{}

func (NopObserver) OnThinking()            {}
func (NopObserver) OnReasoning(string)     {}
func (NopObserver) OnContent(string)       {}
func (NopObserver) OnToolCalls([]ToolCall) {}
func (NopObserver) OnStreamError(error)    {}

// DecodedTurn is the structured result of draining one response stream.
type DecodedTurn struct {
	Content   string
	Reasoning string
	ToolCalls []ToolCall
}

// Decoder accumulates a response stream into a DecodedTurn.
type Decoder struct {
	Mode ContentMode
}

// Drain consumes the transport sequentially until stream end, committing
// each delta to the observer. On a protocol error the stream is aborted
// and the error returned; the partial turn is not.
func (d *Decoder) Drain(t Transport, obs StreamObserver) (*DecodedTurn, error) {
	if obs == nil {
		obs = NopObserver{}
	}

	turn := &DecodedTurn{}
	thinking := false

	for {
		ev, err := t.Next()
		if errors.Is(err, io.EOF) {
			return turn, nil
		}
		if err != nil {
			obs.OnStreamError(err)
			return nil, err
		}

		if (ev.Reasoning != "" || len(ev.ToolCalls) > 0) && !thinking {
			thinking = true
			obs.OnThinking()
		}

		if ev.Reasoning != "" {
			turn.Reasoning += ev.Reasoning
			obs.OnReasoning(ev.Reasoning)
		}

		if ev.Content != "" {
			switch d.Mode {
			case ContentAppend:
				turn.Content += ev.Content
			default:
				turn.Content = ev.Content
			}
			obs.OnContent(turn.Content)
		}

		if len(ev.ToolCalls) > 0 {
			turn.ToolCalls = ev.ToolCalls
			obs.OnToolCalls(ev.ToolCalls)
		}
	}
}
