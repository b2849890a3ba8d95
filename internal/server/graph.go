package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/graphpilot/relay/internal/dataservice"
)

// GraphClient is the slice of the data-service client the proxy routes
// need.
type GraphClient interface {
	GetEdges(ctx context.Context) (json.RawMessage, error)
	GetSchema(ctx context.Context) (json.RawMessage, error)
	GetVertices(ctx context.Context) (json.RawMessage, error)
	RunQuery(ctx context.Context, query string) (json.RawMessage, error)
	LoadData(ctx context.Context) (json.RawMessage, error)
	ClearGraph(ctx context.Context) (json.RawMessage, error)
}

var _ GraphClient = (*dataservice.Client)(nil)

// GraphHandler proxies graph CRUD routes to the external data service.
// Payloads pass through untouched; upstream failures map to 502 with a
// generic body, the transport detail stays in the logs.
type GraphHandler struct {
	client GraphClient
	logger *slog.Logger
}

// NewGraphHandler creates the graph proxy handler.
func NewGraphHandler(client GraphClient, logger *slog.Logger) *GraphHandler {
	return &GraphHandler{client: client, logger: logger}
}

func (h *GraphHandler) Edges(w http.ResponseWriter, r *http.Request) {
	h.proxy(w, r, "edges", func(ctx context.Context) (json.RawMessage, error) {
		return h.client.GetEdges(ctx)
	})
}

func (h *GraphHandler) Schema(w http.ResponseWriter, r *http.Request) {
	h.proxy(w, r, "schema", func(ctx context.Context) (json.RawMessage, error) {
		return h.client.GetSchema(ctx)
	})
}

func (h *GraphHandler) Vertices(w http.ResponseWriter, r *http.Request) {
	h.proxy(w, r, "vertices", func(ctx context.Context) (json.RawMessage, error) {
		return h.client.GetVertices(ctx)
	})
}

func (h *GraphHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req dataservice.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}
	h.proxy(w, r, "query", func(ctx context.Context) (json.RawMessage, error) {
		return h.client.RunQuery(ctx, req.Query)
	})
}

func (h *GraphHandler) Load(w http.ResponseWriter, r *http.Request) {
	h.proxy(w, r, "load", func(ctx context.Context) (json.RawMessage, error) {
		return h.client.LoadData(ctx)
	})
}

func (h *GraphHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.proxy(w, r, "clear", func(ctx context.Context) (json.RawMessage, error) {
		return h.client.ClearGraph(ctx)
	})
}

func (h *GraphHandler) proxy(w http.ResponseWriter, r *http.Request, op string, call func(context.Context) (json.RawMessage, error)) {
	result, err := call(r.Context())
	if err != nil {
		h.logger.Error("data service call failed",
			slog.String("op", op),
			slog.String("request_id", GetRequestID(r.Context())),
			slog.String("error", err.Error()),
		)
		AddError(r.Context(), err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"error": "data service unavailable"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(result)
}
