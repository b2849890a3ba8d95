package stream

// Emitter is the outbound message channel for one run. Implementations own
// a single client connection end to end.
//
// Send is non-terminal and may be called any number of times before a
// terminal call. SendError and Complete are terminal: the first one wins,
// and every write after it is dropped. Implementations never fail the run
// for a malformed message; they substitute a structured error message and
// keep the stream moving toward a terminal state.
//
// RequestID reports the correlation id the channel stamps on every
// message it writes.
type Emitter interface {
	Send(msg Message)
	SendError(appErr AppError)
	Complete(threadID string)
	RequestID() string
}
