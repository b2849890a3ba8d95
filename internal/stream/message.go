// Package stream defines the normalized outbound message protocol and the
// SSE channel that carries it to a connected client.
package stream

import (
	"fmt"
	"time"
)

// MessageType discriminates the outbound message variants.
type MessageType string

const (
	TypeStart   MessageType = "start"
	TypeContent MessageType = "content"
	TypeEvent   MessageType = "event"
	TypeError   MessageType = "error"
	TypeDone    MessageType = "done"
)

// AppError is the structured error payload carried by error messages.
// Message text is always client-safe; upstream detail stays in the logs.
type AppError struct {
	Code      int       `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Message is one normalized outbound message. Every message carries the
// requestId of the run it belongs to so a client multiplexing several
// requests can demultiplex the stream.
type Message struct {
	Type      MessageType `json:"type"`
	RequestID string      `json:"requestId"`
	Timestamp time.Time   `json:"timestamp"`
	Content   string      `json:"content,omitempty"`
	ThreadID  string      `json:"threadId,omitempty"`
	Error     *AppError   `json:"error,omitempty"`
}

// NewStart builds the message acknowledging that a run was accepted.
func NewStart() Message {
	return Message{Type: TypeStart, Timestamp: time.Now().UTC()}
}

// NewContent builds an incremental text message.
func NewContent(text string) Message {
	return Message{Type: TypeContent, Content: text, Timestamp: time.Now().UTC()}
}

// NewEvent builds a state-change notification message.
func NewEvent(text string) Message {
	return Message{Type: TypeEvent, Content: text, Timestamp: time.Now().UTC()}
}

// Validate checks a message against the outbound protocol shape. The
// requestId is stamped by the channel, so it must be present by the time
// validation runs.
func (m Message) Validate() error {
	switch m.Type {
	case TypeStart, TypeContent, TypeEvent, TypeError, TypeDone:
	default:
		return fmt.Errorf("unknown message type %q", m.Type)
	}
	if m.RequestID == "" {
		return fmt.Errorf("message type %q missing requestId", m.Type)
	}
	if m.Timestamp.IsZero() {
		return fmt.Errorf("message type %q missing timestamp", m.Type)
	}
	if m.Type == TypeError && m.Error == nil {
		return fmt.Errorf("error message missing error payload")
	}
	if m.Type != TypeError && m.Error != nil {
		return fmt.Errorf("message type %q carries an error payload", m.Type)
	}
	if m.Type == TypeDone && m.ThreadID == "" {
		return fmt.Errorf("done message missing threadId")
	}
	return nil
}
