package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

type fakeGraphService struct {
	edges   json.RawMessage
	schema  json.RawMessage
	results map[string]json.RawMessage
	err     error
}

func (f *fakeGraphService) GetEdges(context.Context) (json.RawMessage, error) {
	return f.edges, f.err
}

func (f *fakeGraphService) GetSchema(context.Context) (json.RawMessage, error) {
	return f.schema, f.err
}

func (f *fakeGraphService) RunQuery(_ context.Context, query string) (json.RawMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.results[query], nil
}

func TestGraphCatalog_Names(t *testing.T) {
	reg := NewRegistry(GraphCatalog(&fakeGraphService{})...)

	for _, name := range []string{"getEdges", "getSchema", "runQuery"} {
		if _, ok := reg.Lookup(name); !ok {
			t.Errorf("Lookup(%q) = false, want registered", name)
		}
	}
	if _, ok := reg.Lookup("loadData"); ok {
		t.Error("Lookup(loadData) = true, want unregistered")
	}
}

func TestGetEdgesTool(t *testing.T) {
	svc := &fakeGraphService{edges: json.RawMessage(`{"edges":[],"total":0}`)}
	tool, _ := NewRegistry(GraphCatalog(svc)...).Lookup("getEdges")

	out, err := tool.Execute(context.Background(), "{}")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out != `{"edges":[],"total":0}` {
		t.Errorf("Execute() = %q", out)
	}
}

func TestRunQueryTool(t *testing.T) {
	svc := &fakeGraphService{results: map[string]json.RawMessage{
		"g.V().count()": json.RawMessage(`[12]`),
	}}
	tool, _ := NewRegistry(GraphCatalog(svc)...).Lookup("runQuery")

	t.Run("valid arguments", func(t *testing.T) {
		out, err := tool.Execute(context.Background(), `{"query":"g.V().count()"}`)
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if out != "[12]" {
			t.Errorf("Execute() = %q, want [12]", out)
		}
	})

	t.Run("malformed arguments", func(t *testing.T) {
		if _, err := tool.Execute(context.Background(), "not json"); err == nil {
			t.Fatal("Execute() error = nil, want argument parse error")
		}
	})

	t.Run("missing query", func(t *testing.T) {
		if _, err := tool.Execute(context.Background(), "{}"); err == nil {
			t.Fatal("Execute() error = nil, want missing query error")
		}
	})
}

func TestGraphTools_PropagateServiceError(t *testing.T) {
	svcErr := errors.New("connection refused")
	svc := &fakeGraphService{err: svcErr}
	reg := NewRegistry(GraphCatalog(svc)...)

	for _, tc := range []struct {
		name string
		args string
	}{
		{"getEdges", "{}"},
		{"getSchema", "{}"},
		{"runQuery", `{"query":"g.V()"}`},
	} {
		tool, _ := reg.Lookup(tc.name)
		if _, err := tool.Execute(context.Background(), tc.args); !errors.Is(err, svcErr) {
			t.Errorf("%s Execute() error = %v, want %v", tc.name, err, svcErr)
		}
	}
}
