package relay

import (
	"context"
	"log/slog"

	"github.com/graphpilot/relay/internal/assistant"
	"github.com/graphpilot/relay/internal/stream"
	"github.com/graphpilot/relay/internal/tools"
)

// MaxToolDepth bounds how many tool-call round trips one run may perform.
// A run that keeps requiring action past this is treated as a runaway
// loop and aborted.
const MaxToolDepth = 10

// Translator consumes upstream run event streams and re-emits them as
// normalized outbound messages. A requires-action event pauses
// consumption, executes the requested tool batch, submits the outputs,
// and continues on the replacement stream the provider returns.
type Translator struct {
	provider   assistant.Provider
	dispatcher *tools.Dispatcher
	logger     *slog.Logger
}

// NewTranslator creates a translator.
func NewTranslator(provider assistant.Provider, dispatcher *tools.Dispatcher, logger *slog.Logger) *Translator {
	return &Translator{
		provider:   provider,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Translate drives one run to its terminal event. The upstream pattern of
// recursing into each replacement stream is flattened into a loop over a
// current-stream variable so depth is bounded by a counter, not the call
// stack. Exactly one of two things happens: the done message is emitted
// via the emitter and Translate returns nil, or no terminal message is
// emitted and Translate returns the fatal error for the orchestrator to
// surface.
func (t *Translator) Translate(ctx context.Context, events <-chan assistant.EventResult, threadID string, emitter stream.Emitter) error {
	current := events
	for depth := 0; ; depth++ {
		if depth > MaxToolDepth {
			return &DepthExceededError{Depth: depth}
		}

		next, done, err := t.consume(ctx, current, threadID, emitter, depth)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		current = next
	}
}

// consume reads one event stream in arrival order. It returns done=true
// after the completed event, a replacement stream after a tool round
// trip, or an error. It never reads past the event that decided its
// return: a finished run or a superseded stream must not be drained
// further.
func (t *Translator) consume(ctx context.Context, events <-chan assistant.EventResult, threadID string, emitter stream.Emitter, depth int) (<-chan assistant.EventResult, bool, error) {
	for res := range events {
		if res.Err != nil {
			return nil, false, &UpstreamError{Op: "stream read", Err: res.Err}
		}

		ev := res.Event
		switch ev.Type {
		case assistant.EventRunCompleted:
			t.logger.Info("run completed",
				slog.String("thread_id", threadID),
				slog.Int("depth", depth),
			)
			emitter.Complete(threadID)
			return nil, true, nil

		case assistant.EventRunRequiresAction:
			emitter.Send(stream.NewEvent(stateText(ev.Type)))
			next, err := t.handleToolAction(ctx, ev, threadID)
			if err != nil {
				return nil, false, err
			}
			return next, false, nil

		case assistant.EventMessageDelta:
			text, err := ev.DeltaText()
			if err != nil {
				return nil, false, &ProtocolError{Reason: err.Error()}
			}
			emitter.Send(stream.NewContent(text))

		default:
			emitter.Send(stream.NewEvent(stateText(ev.Type)))
		}
	}

	return nil, false, &ProtocolError{Reason: "event stream ended without a terminal event"}
}

// handleToolAction executes the tool-call batch of a requires-action
// event and submits the outputs, yielding the replacement event stream.
// Exactly one dispatch and one submission happen per batch.
func (t *Translator) handleToolAction(ctx context.Context, ev *assistant.Event, threadID string) (<-chan assistant.EventResult, error) {
	run, err := ev.Run()
	if err != nil {
		return nil, &ProtocolError{Reason: err.Error()}
	}

	if run.RequiredAction == nil {
		return nil, &ProtocolError{Reason: "requires-action event without required_action"}
	}
	calls := run.RequiredAction.SubmitToolOutputs.ToolCalls
	if len(calls) == 0 {
		return nil, &ProtocolError{Reason: "requires-action event with empty tool-call batch"}
	}

	t.logger.Info("processing tool action",
		slog.String("thread_id", threadID),
		slog.String("run_id", run.ID),
		slog.Int("tool_calls", len(calls)),
	)

	outputs, err := t.dispatcher.Dispatch(ctx, calls)
	if err != nil {
		return nil, &ToolExecutionError{Err: err}
	}

	next, err := t.provider.SubmitToolOutputs(ctx, threadID, run.ID, outputs)
	if err != nil {
		return nil, &UpstreamError{Op: "submit tool outputs", Err: err}
	}

	t.logger.Info("tool outputs submitted",
		slog.String("thread_id", threadID),
		slog.String("run_id", run.ID),
	)
	return next, nil
}

// stateText maps an event kind to the short state description shown to
// the client.
func stateText(t assistant.EventType) string {
	switch t {
	case assistant.EventRunCreated:
		return "thinking ..."
	case assistant.EventRunInProgress:
		return "generating ..."
	case assistant.EventRunRequiresAction:
		return "running tools ..."
	default:
		return "processing ..."
	}
}
