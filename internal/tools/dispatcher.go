package tools

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/graphpilot/relay/internal/assistant"
)

// UnsupportedOutput is returned to the provider for tool names that are
// not registered. An unknown tool is a recoverable condition, not a
// failure: the run continues and the assistant works with this answer.
const UnsupportedOutput = "feature is not supported yet"

// Dispatcher executes tool-call batches against a registry.
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher over the given registry.
func NewDispatcher(registry *Registry, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{registry: registry, logger: logger}
}

// Dispatch runs every call in the batch concurrently and waits for all of
// them. The returned outputs mirror the call ids of the batch exactly.
//
// Unregistered names degrade to UnsupportedOutput. A registered tool that
// fails aborts the whole dispatch: the provider cannot accept a partial
// output set, so there is nothing useful to salvage from the batch.
func (d *Dispatcher) Dispatch(ctx context.Context, calls []assistant.ToolCall) ([]assistant.ToolOutput, error) {
	outputs := make([]assistant.ToolOutput, len(calls))

	g, ctx := errgroup.WithContext(ctx)
	for i, call := range calls {
		g.Go(func() error {
			out, err := d.execute(ctx, call)
			if err != nil {
				return err
			}
			outputs[i] = assistant.ToolOutput{ToolCallID: call.ID, Output: out}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

func (d *Dispatcher) execute(ctx context.Context, call assistant.ToolCall) (string, error) {
	tool, ok := d.registry.Lookup(call.Function.Name)
	if !ok {
		d.logger.Warn("unsupported tool requested",
			slog.String("tool", call.Function.Name),
			slog.String("call_id", call.ID),
		)
		return UnsupportedOutput, nil
	}

	d.logger.Info("executing tool",
		slog.String("tool", tool.Name()),
		slog.String("capability", string(tool.Capability())),
		slog.String("call_id", call.ID),
	)

	out, err := tool.Execute(ctx, call.Function.Arguments)
	if err != nil {
		return "", fmt.Errorf("tool %s failed: %w", tool.Name(), err)
	}
	return out, nil
}
