// Package llm provides a uniform client interface over heterogeneous
// model backends. Adapters receive the neutral conversation log plus
// the declared tool schemas and return either text or tool calls.
package llm

import (
	"context"
	"fmt"
	"time"

	"hutch/internal/history"
)

// ToolDef describes a callable to the model: name and argument shape
// only, no implementation detail.
type ToolDef struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolCall is a tool invocation requested by the model. Ephemeral; the
// engine persists it only as metadata on the resulting tool message.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// Result is one model turn: final text, or one or more tool calls.
type Result struct {
	Text  string
	Calls []ToolCall
}

type Provider interface {
	Chat(ctx context.Context, msgs []history.Message, tools []ToolDef) (*Result, error)
}

// Options configures a provider instance for one agent's model binding.
type Options struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature *float64
	MaxTokens   int
	Timeout     time.Duration
}

// Default endpoints per provider tag. Anthropic and Ollama are reached
// through their OpenAI-compatible surfaces.
var baseURLs = map[string]string{
	"openai":    "",
	"anthropic": "https://api.anthropic.com/v1",
	"ollama":    "http://localhost:11434/v1",
}

// KnownProvider reports whether tag names a supported backend.
func KnownProvider(tag string) bool {
	_, ok := baseURLs[tag]
	return ok
}

// ForProvider builds the adapter for a provider tag. Unknown tags are a
// configuration error.
func ForProvider(tag string, opts Options) (Provider, error) {
	base, ok := baseURLs[tag]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", tag)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = base
	}
	return NewOpenAI(opts), nil
}
