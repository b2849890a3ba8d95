package relay

import "fmt"

// ProtocolError reports a malformed or unexpected upstream event, such as
// a requires-action event with no tool calls. Fatal to the run.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return "protocol error: " + e.Reason
}

// ToolExecutionError reports a registered tool failing mid-dispatch.
// Fatal to the run; the tool's failure detail is logged, never sent to
// the client.
type ToolExecutionError struct {
	Err error
}

func (e *ToolExecutionError) Error() string {
	return "tool execution failed: " + e.Err.Error()
}

func (e *ToolExecutionError) Unwrap() error {
	return e.Err
}

// DepthExceededError reports the tool-call recursion guard tripping.
type DepthExceededError struct {
	Depth int
}

func (e *DepthExceededError) Error() string {
	return fmt.Sprintf("tool-call depth %d exceeds maximum %d", e.Depth, MaxToolDepth)
}

// UpstreamError reports a network-level failure talking to the assistant
// provider. Fatal to the run; surfaced to the client as a generic
// internal error.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return "upstream " + e.Op + " failed: " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
