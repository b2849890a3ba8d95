package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/graphpilot/relay/internal/relay"
	"github.com/graphpilot/relay/internal/stream"
)

// Runner executes one chat run against an outbound channel.
type Runner interface {
	Run(ctx context.Context, req relay.RunRequest, emitter stream.Emitter)
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	ThreadID string `json:"threadId,omitempty"`
	Content  string `json:"content"`
}

// ChatHandler serves the streaming chat endpoint. Once the event stream
// opens the HTTP status is fixed at 200; everything after that, errors
// included, travels in-band as normalized messages.
type ChatHandler struct {
	runner Runner
	logger *slog.Logger
}

// NewChatHandler creates the chat handler.
func NewChatHandler(runner Runner, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{runner: runner, logger: logger}
}

func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		http.Error(w, "content is required", http.StatusBadRequest)
		return
	}

	requestID := GetRequestID(r.Context())
	AddLogField(r.Context(), "thread_id", req.ThreadID)

	emitter, err := stream.NewSSE(w, requestID, h.logger)
	if err != nil {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	h.runner.Run(r.Context(), relay.RunRequest{
		ThreadID: req.ThreadID,
		Content:  req.Content,
	}, emitter)
}
