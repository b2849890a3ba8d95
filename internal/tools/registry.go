// Package tools holds the registry of local functions the assistant can
// invoke mid-run and the dispatcher that executes tool-call batches.
package tools

import (
	"context"
	"sort"
)

// Capability tags what part of the system a tool touches.
type Capability string

// CapabilityInfra marks tools backed by the infrastructure graph.
const CapabilityInfra Capability = "INFRA"

// Tool is one executable capability. Execute receives the raw argument
// payload from the provider; each tool interprets its own encoding and
// returns a string-encodable result.
type Tool interface {
	Name() string
	Capability() Capability
	Execute(ctx context.Context, rawArgs string) (string, error)
}

// Registry maps stable tool names to executable capabilities. It is
// populated once at process start and read-only afterwards, so concurrent
// lookups need no locking.
type Registry struct {
	tools map[string]Tool
}

// NewRegistry builds a registry from a fixed catalog.
func NewRegistry(catalog ...Tool) *Registry {
	tools := make(map[string]Tool, len(catalog))
	for _, t := range catalog {
		tools[t.Name()] = t
	}
	return &Registry{tools: tools}
}

// Lookup resolves a tool by name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names lists registered tool names in stable order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
