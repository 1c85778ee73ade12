package tools

import (
	"context"
	"fmt"
	"plugin"
)

// Func is the signature a plugin must export: raw JSON argument string
// in, textual result out.
type Func func(ctx context.Context, input string) (string, error)

// Plugin is a tool backed by a function loaded from a Go plugin.
//
// Trust boundary: plugin code runs with the full privilege of the host
// process. Nothing confines it to the agent's sandbox; only the
// built-in tools are inherently safe. Loading requires the
// allow_plugins opt-in in the runtime config.
type Plugin struct {
	name        string
	description string
	fn          Func
}

// LoadPlugin opens the plugin at path and resolves the named exported
// symbol. Signature mismatches are fatal at load time, not call time.
func LoadPlugin(name, description, path, symbol string) (*Plugin, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening plugin %s: %w", path, err)
	}
	sym, err := p.Lookup(symbol)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: %w", path, err)
	}

	fn, ok := sym.(func(context.Context, string) (string, error))
	if !ok {
		return nil, fmt.Errorf("plugin %s: symbol %s has type %T, want func(context.Context, string) (string, error)", path, symbol, sym)
	}
	return &Plugin{name: name, description: description, fn: fn}, nil
}

func (p *Plugin) Name() string        { return p.name }
func (p *Plugin) Description() string { return p.description }

// InputSchema for plugins is a single free-form input string; the
// plugin parses its own arguments.
func (p *Plugin) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"input": map[string]any{
				"type":        "string",
				"description": "Raw input passed to the plugin function",
			},
		},
		"required":             []string{"input"},
		"additionalProperties": false,
	}
}

func (p *Plugin) Execute(ctx context.Context, input string) (string, error) {
	return p.fn(ctx, input)
}
