package stream

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func nowMust() time.Time { return time.Now().UTC() }

func newTestSSE(t *testing.T) (*SSE, *httptest.ResponseRecorder) {
	t.Helper()
	rec := httptest.NewRecorder()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sse, err := NewSSE(rec, "req-1", logger)
	if err != nil {
		t.Fatalf("NewSSE() error = %v", err)
	}
	return sse, rec
}

// decodeMessages parses every data: frame written to the recorder.
func decodeMessages(t *testing.T, body string) []Message {
	t.Helper()
	var out []Message
	for _, frame := range strings.Split(body, "\n\n") {
		frame = strings.TrimSpace(frame)
		if frame == "" {
			continue
		}
		if !strings.HasPrefix(frame, "data: ") {
			t.Fatalf("frame %q does not start with data:", frame)
		}
		var msg Message
		if err := json.Unmarshal([]byte(strings.TrimPrefix(frame, "data: ")), &msg); err != nil {
			t.Fatalf("unmarshal frame %q: %v", frame, err)
		}
		out = append(out, msg)
	}
	return out
}

func TestSSE_SendStampsRequestID(t *testing.T) {
	sse, rec := newTestSSE(t)

	sse.Send(NewStart())
	sse.Send(NewContent("hello"))

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}

	msgs := decodeMessages(t, rec.Body.String())
	if len(msgs) != 2 {
		t.Fatalf("message count = %d, want 2", len(msgs))
	}
	for _, msg := range msgs {
		if msg.RequestID != "req-1" {
			t.Errorf("RequestID = %q, want req-1", msg.RequestID)
		}
		if msg.Timestamp.IsZero() {
			t.Errorf("message %q has zero timestamp", msg.Type)
		}
	}
	if msgs[0].Type != TypeStart || msgs[1].Type != TypeContent {
		t.Errorf("types = %v, %v, want start, content", msgs[0].Type, msgs[1].Type)
	}
	if msgs[1].Content != "hello" {
		t.Errorf("Content = %q, want hello", msgs[1].Content)
	}
}

func TestSSE_InvalidMessageSubstituted(t *testing.T) {
	sse, rec := newTestSSE(t)

	sse.Send(Message{Type: "bogus"})

	msgs := decodeMessages(t, rec.Body.String())
	if len(msgs) != 1 {
		t.Fatalf("message count = %d, want 1", len(msgs))
	}
	if msgs[0].Type != TypeError {
		t.Fatalf("substituted type = %q, want error", msgs[0].Type)
	}
	if msgs[0].Error == nil || msgs[0].Error.Code != 500 {
		t.Errorf("substituted error = %+v, want code 500", msgs[0].Error)
	}

	// Substitution is not terminal, the stream continues.
	sse.Complete("thread-1")
	msgs = decodeMessages(t, rec.Body.String())
	if got := msgs[len(msgs)-1].Type; got != TypeDone {
		t.Errorf("final type = %q, want done", got)
	}
}

func TestSSE_TerminalWriteHappensOnce(t *testing.T) {
	tests := []struct {
		name     string
		first    func(*SSE)
		second   func(*SSE)
		wantType MessageType
	}{
		{
			name:     "complete then error",
			first:    func(s *SSE) { s.Complete("thread-1") },
			second:   func(s *SSE) { s.SendError(AppError{Code: 500, Message: "boom"}) },
			wantType: TypeDone,
		},
		{
			name:     "error then complete",
			first:    func(s *SSE) { s.SendError(AppError{Code: 500, Message: "boom"}) },
			second:   func(s *SSE) { s.Complete("thread-1") },
			wantType: TypeError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sse, rec := newTestSSE(t)

			tt.first(sse)
			tt.second(sse)
			sse.Send(NewContent("after terminal"))

			msgs := decodeMessages(t, rec.Body.String())
			if len(msgs) != 1 {
				t.Fatalf("message count = %d, want 1", len(msgs))
			}
			if msgs[0].Type != tt.wantType {
				t.Errorf("type = %q, want %q", msgs[0].Type, tt.wantType)
			}
		})
	}
}

func TestSSE_DoneCarriesThreadID(t *testing.T) {
	sse, rec := newTestSSE(t)

	sse.Complete("thread-42")

	msgs := decodeMessages(t, rec.Body.String())
	if len(msgs) != 1 {
		t.Fatalf("message count = %d, want 1", len(msgs))
	}
	if msgs[0].ThreadID != "thread-42" {
		t.Errorf("ThreadID = %q, want thread-42", msgs[0].ThreadID)
	}
}

func TestMessage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		msg     Message
		wantErr bool
	}{
		{
			name: "valid content",
			msg:  Message{Type: TypeContent, RequestID: "r", Timestamp: nowMust()},
		},
		{
			name:    "missing request id",
			msg:     Message{Type: TypeContent, Timestamp: nowMust()},
			wantErr: true,
		},
		{
			name:    "error without payload",
			msg:     Message{Type: TypeError, RequestID: "r", Timestamp: nowMust()},
			wantErr: true,
		},
		{
			name:    "done without thread id",
			msg:     Message{Type: TypeDone, RequestID: "r", Timestamp: nowMust()},
			wantErr: true,
		},
		{
			name:    "content with error payload",
			msg:     Message{Type: TypeContent, RequestID: "r", Timestamp: nowMust(), Error: &AppError{}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
