package relay

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/graphpilot/relay/internal/assistant"
	"github.com/graphpilot/relay/internal/storage"
	"github.com/graphpilot/relay/internal/stream"
)

// RunRequest is one chat turn. ThreadID is optional; a missing one makes
// the orchestrator create a fresh thread. AgentID overrides the default
// agent profile when set.
type RunRequest struct {
	ThreadID string
	Content  string
	AgentID  string
}

// Orchestrator owns one outbound channel per run end to end: it ensures a
// thread exists, appends the user message, starts the first event stream,
// and hands it to the translator. Every failure anywhere on that path is
// caught once here and converted to a single terminal error message, so
// the client always receives exactly one terminal signal.
type Orchestrator struct {
	provider   assistant.Provider
	translator *Translator
	agentID    string
	store      storage.RunStore
	logger     *slog.Logger
}

// NewOrchestrator creates an orchestrator. store may be nil to disable
// run recording.
func NewOrchestrator(provider assistant.Provider, translator *Translator, agentID string, store storage.RunStore, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		provider:   provider,
		translator: translator,
		agentID:    agentID,
		store:      store,
		logger:     logger,
	}
}

// Run executes one chat turn against the upstream provider, emitting
// normalized messages to the emitter throughout.
func (o *Orchestrator) Run(ctx context.Context, req RunRequest, emitter stream.Emitter) {
	start := time.Now()

	// Acknowledge the request before any upstream I/O.
	emitter.Send(stream.NewStart())

	agentID := req.AgentID
	if agentID == "" {
		agentID = o.agentID
	}

	threadID, err := o.runStream(ctx, req, agentID, emitter)
	if err != nil {
		o.fail(emitter, err)
	}

	o.record(ctx, emitter.RequestID(), threadID, agentID, err, time.Since(start))
}

func (o *Orchestrator) runStream(ctx context.Context, req RunRequest, agentID string, emitter stream.Emitter) (string, error) {
	threadID := req.ThreadID
	if threadID == "" {
		created, err := o.provider.CreateThread(ctx)
		if err != nil {
			return "", &UpstreamError{Op: "create thread", Err: err}
		}
		threadID = created
		o.logger.Info("created thread", slog.String("thread_id", threadID))
	}

	if err := o.provider.AddMessage(ctx, threadID, "user", req.Content); err != nil {
		return threadID, &UpstreamError{Op: "add message", Err: err}
	}

	events, err := o.provider.StreamRun(ctx, threadID, agentID)
	if err != nil {
		return threadID, &UpstreamError{Op: "start run", Err: err}
	}

	return threadID, o.translator.Translate(ctx, events, threadID, emitter)
}

// fail logs the fatal error with full detail and emits the single
// terminal error message with a generic client-safe payload.
func (o *Orchestrator) fail(emitter stream.Emitter, err error) {
	o.logger.Error("run failed",
		slog.String("kind", errorKind(err)),
		slog.String("error", err.Error()),
	)
	emitter.SendError(stream.AppError{
		Code:      http.StatusInternalServerError,
		Message:   "internal server error",
		Timestamp: time.Now().UTC(),
	})
}

// record persists the run outcome, best effort, decoupled from the
// request lifecycle so a disconnected client cannot drop the record.
func (o *Orchestrator) record(ctx context.Context, requestID, threadID, agentID string, runErr error, duration time.Duration) {
	if o.store == nil {
		return
	}

	status, kind := "completed", ""
	if runErr != nil {
		status, kind = "error", errorKind(runErr)
	}

	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	rec := &storage.RunRecord{
		ID:        "run_" + uuid.New().String(),
		RequestID: requestID,
		ThreadID:  threadID,
		AgentID:   agentID,
		Status:    status,
		ErrorKind: kind,
		Duration:  duration,
		CreatedAt: time.Now().UTC(),
	}
	if err := o.store.RecordRun(persistCtx, rec); err != nil {
		o.logger.Error("failed to record run",
			slog.String("thread_id", threadID),
			slog.String("error", err.Error()),
		)
	}
}

// errorKind classifies a fatal run error for logs and run records.
func errorKind(err error) string {
	var protoErr *ProtocolError
	var toolErr *ToolExecutionError
	var depthErr *DepthExceededError
	var upErr *UpstreamError

	switch {
	case errors.As(err, &protoErr):
		return "protocol"
	case errors.As(err, &toolErr):
		return "tool_execution"
	case errors.As(err, &depthErr):
		return "depth_exceeded"
	case errors.As(err, &upErr):
		return "upstream"
	default:
		return "internal"
	}
}
