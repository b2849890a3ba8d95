package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// GraphService is the slice of the data-service client the graph tools
// need.
type GraphService interface {
	GetEdges(ctx context.Context) (json.RawMessage, error)
	GetSchema(ctx context.Context) (json.RawMessage, error)
	RunQuery(ctx context.Context, query string) (json.RawMessage, error)
}

// GraphCatalog returns the fixed tool catalog backed by the graph data
// service: fetch all edges, fetch the schema, and run a raw query.
func GraphCatalog(svc GraphService) []Tool {
	return []Tool{
		&getEdgesTool{svc: svc},
		&getSchemaTool{svc: svc},
		&runQueryTool{svc: svc},
	}
}

type getEdgesTool struct {
	svc GraphService
}

func (t *getEdgesTool) Name() string           { return "getEdges" }
func (t *getEdgesTool) Capability() Capability { return CapabilityInfra }

func (t *getEdgesTool) Execute(ctx context.Context, rawArgs string) (string, error) {
	edges, err := t.svc.GetEdges(ctx)
	if err != nil {
		return "", err
	}
	return string(edges), nil
}

type getSchemaTool struct {
	svc GraphService
}

func (t *getSchemaTool) Name() string           { return "getSchema" }
func (t *getSchemaTool) Capability() Capability { return CapabilityInfra }

func (t *getSchemaTool) Execute(ctx context.Context, rawArgs string) (string, error) {
	schema, err := t.svc.GetSchema(ctx)
	if err != nil {
		return "", err
	}
	return string(schema), nil
}

type runQueryTool struct {
	svc GraphService
}

func (t *runQueryTool) Name() string           { return "runQuery" }
func (t *runQueryTool) Capability() Capability { return CapabilityInfra }

func (t *runQueryTool) Execute(ctx context.Context, rawArgs string) (string, error) {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return "", fmt.Errorf("invalid runQuery arguments: %w", err)
	}
	if args.Query == "" {
		return "", fmt.Errorf("runQuery requires a query argument")
	}

	result, err := t.svc.RunQuery(ctx, args.Query)
	if err != nil {
		return "", err
	}
	return string(result), nil
}
