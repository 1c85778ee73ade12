// Package history persists one ordered message log per agent. A log is
// read fully on load and written fully on save; there is no
// concurrent-writer protection because the engine serializes access.
package history

import "context"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Invocation records the tool request a tool-result message answers.
// It is never persisted on its own, only as metadata on the result.
type Invocation struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message is one entry in an agent's conversation log.
type Message struct {
	Role       Role        `json:"role"`
	Content    string      `json:"content"`
	CallID     string      `json:"call_id,omitempty"`
	Invocation *Invocation `json:"invocation,omitempty"`
}

// Seed returns the initial log for an agent: exactly one system message
// carrying the configured instruction.
func Seed(systemPrompt string) []Message {
	return []Message{{Role: RoleSystem, Content: systemPrompt}}
}

// Store loads and persists per-agent conversation logs.
//
// Load creates and persists a fresh seeded log when none exists. Reset
// reseeds unconditionally and persists immediately; the log is
// re-initialized, never deleted.
type Store interface {
	Load(ctx context.Context, agentID, systemPrompt string) ([]Message, error)
	Save(ctx context.Context, agentID string, log []Message) error
	Reset(ctx context.Context, agentID, systemPrompt string) ([]Message, error)
}
