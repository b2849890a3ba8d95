package assistant

import (
	"encoding/json"
	"fmt"
)

// EventType identifies one lifecycle event of an assistant run.
type EventType string

const (
	EventRunCreated        EventType = "thread.run.created"
	EventRunInProgress     EventType = "thread.run.in_progress"
	EventRunRequiresAction EventType = "thread.run.requires_action"
	EventRunCompleted      EventType = "thread.run.completed"
	EventMessageDelta      EventType = "thread.message.delta"
)

// Event is one unit of the run lifecycle stream. Data is the raw payload
// of the SSE frame; callers decode it per event type.
type Event struct {
	Type EventType
	Data json.RawMessage
}

// EventResult wraps an event or a transport error from the stream reader.
type EventResult struct {
	Event *Event
	Err   error
}

// ToolCall is one function invocation requested by the provider. The ID is
// unique within its requires-action batch and must be echoed back on the
// matching output.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall names the tool and carries its raw argument payload. The
// arguments string is opaque here; each tool interprets its own encoding.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolOutput is the result of one tool call, keyed by the originating
// call id.
type ToolOutput struct {
	ToolCallID string `json:"tool_call_id"`
	Output     string `json:"output"`
}

// Run is the run object carried by lifecycle events.
type Run struct {
	ID             string          `json:"id"`
	ThreadID       string          `json:"thread_id"`
	Status         string          `json:"status"`
	RequiredAction *RequiredAction `json:"required_action,omitempty"`
}

// RequiredAction carries the tool-call batch of a requires-action event.
type RequiredAction struct {
	Type              string `json:"type"`
	SubmitToolOutputs struct {
		ToolCalls []ToolCall `json:"tool_calls"`
	} `json:"submit_tool_outputs"`
}

// Run decodes the run payload of a lifecycle event.
func (e *Event) Run() (*Run, error) {
	var run Run
	if err := json.Unmarshal(e.Data, &run); err != nil {
		return nil, fmt.Errorf("failed to decode run payload for %s: %w", e.Type, err)
	}
	return &run, nil
}

// messageDelta is the payload of a thread.message.delta event.
type messageDelta struct {
	Delta struct {
		Content []struct {
			Type string `json:"type"`
			Text *struct {
				Value string `json:"value"`
			} `json:"text,omitempty"`
		} `json:"content"`
	} `json:"delta"`
}

// DeltaText extracts the incremental text of a message-delta event. A
// delta with no text content yields the empty string, not an error.
func (e *Event) DeltaText() (string, error) {
	var delta messageDelta
	if err := json.Unmarshal(e.Data, &delta); err != nil {
		return "", fmt.Errorf("failed to decode message delta: %w", err)
	}
	for _, part := range delta.Delta.Content {
		if part.Type == "text" && part.Text != nil {
			return part.Text.Value, nil
		}
	}
	return "", nil
}
