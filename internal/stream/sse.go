package stream

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// SSE writes normalized messages to a client over a server-sent-events
// connection. It stamps every message with the requestId fixed at
// construction and enforces single-terminal-write semantics: once
// SendError or Complete has written, every further call is a logged no-op.
type SSE struct {
	w         http.ResponseWriter
	flusher   http.Flusher
	requestID string
	logger    *slog.Logger

	mu         sync.Mutex
	terminated bool
}

// NewSSE prepares w for event streaming and returns the channel. It fails
// when the ResponseWriter cannot flush, since buffered SSE is useless.
func NewSSE(w http.ResponseWriter, requestID string, logger *slog.Logger) (*SSE, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support streaming")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	return &SSE{
		w:         w,
		flusher:   flusher,
		requestID: requestID,
		logger:    logger,
	}, nil
}

// RequestID returns the correlation id stamped on every message.
func (s *SSE) RequestID() string {
	return s.requestID
}

// Send writes one non-terminal message. A message that fails validation is
// replaced by a structured error message so the connection keeps moving
// toward a terminal state instead of hanging open.
func (s *SSE) Send(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.terminated {
		s.logger.Warn("send after terminal write dropped",
			slog.String("request_id", s.requestID),
			slog.String("type", string(msg.Type)),
		)
		return
	}

	msg = s.stamp(msg)
	if err := msg.Validate(); err != nil {
		s.logger.Error("outbound message failed validation",
			slog.String("request_id", s.requestID),
			slog.String("type", string(msg.Type)),
			slog.String("error", err.Error()),
		)
		now := time.Now().UTC()
		msg = s.stamp(Message{
			Type: TypeError,
			Error: &AppError{
				Code:      http.StatusInternalServerError,
				Message:   "invalid message format generated",
				Timestamp: now,
			},
		})
	}

	s.write(msg)
}

// SendError writes a terminal error message and seals the channel.
func (s *SSE) SendError(appErr AppError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.terminated {
		s.logger.Warn("duplicate terminal write dropped",
			slog.String("request_id", s.requestID),
			slog.String("type", string(TypeError)),
		)
		return
	}
	s.terminated = true

	if appErr.Timestamp.IsZero() {
		appErr.Timestamp = time.Now().UTC()
	}
	s.write(s.stamp(Message{Type: TypeError, Error: &appErr}))
}

// Complete writes the terminal done message carrying the thread id the
// client needs to resume a later turn, and seals the channel.
func (s *SSE) Complete(threadID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.terminated {
		s.logger.Warn("duplicate terminal write dropped",
			slog.String("request_id", s.requestID),
			slog.String("type", string(TypeDone)),
		)
		return
	}
	s.terminated = true

	s.write(s.stamp(Message{Type: TypeDone, ThreadID: threadID}))
}

func (s *SSE) stamp(msg Message) Message {
	msg.RequestID = s.requestID
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	return msg
}

// write serializes and flushes one message. Callers hold s.mu.
func (s *SSE) write(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("failed to marshal outbound message",
			slog.String("request_id", s.requestID),
			slog.String("error", err.Error()),
		)
		return
	}
	fmt.Fprintf(s.w, "data: %s\n\n", data)
	s.flusher.Flush()
}

var _ Emitter = (*SSE)(nil)
