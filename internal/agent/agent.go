// Package agent hosts the execution engine: the loop that turns one
// user utterance into a finished reply by calling the model, dispatching
// requested tools, and recording every event in the conversation log.
package agent

import (
	"context"
	"sort"
)

type EventType string

const (
	EventToolCall   EventType = "tool_call"
	EventToolResult EventType = "tool_result"
)

// Event reports tool activity during a chat turn to an observer such
// as the CLI. Purely informational; the conversation log is the record.
type Event struct {
	Type EventType
	Data map[string]string
}

// Tool is a named callable the model may request. Execute receives the
// raw JSON argument string supplied by the model.
type Tool interface {
	Name() string
	Description() string
	InputSchema() map[string]any
	Execute(ctx context.Context, input string) (string, error)
}

// Registry maps declared tool names to bound callables for one agent.
// Built once at profile load time, read-only afterwards.
type Registry struct {
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

func (r *Registry) Register(t Tool) {
	r.tools[t.Name()] = t
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// All returns the registered tools sorted by name, so the schema sent
// to the model is stable across runs.
func (r *Registry) All() []Tool {
	out := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
