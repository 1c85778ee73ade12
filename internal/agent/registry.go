package agent

import (
	"fmt"
	"time"

	"hutch/internal/config"
	"hutch/internal/secrets"
	"hutch/internal/tools"
)

// BuildRegistry resolves a profile's tool declarations into bound
// callables. Builtins capture the agent's sandbox root in their
// closure; http tools resolve header secrets at call time; plugins run
// unsandboxed and require the allow_plugins opt-in. Any unknown name
// or type is a configuration error, fatal here rather than at call
// time.
func BuildRegistry(profile *config.AgentProfile, store *secrets.Store, allowPlugins bool) (*Registry, error) {
	registry := NewRegistry()

	for _, decl := range profile.Tools {
		switch decl.Type {
		case "builtin":
			tool, err := builtin(decl.Name, profile.Sandbox)
			if err != nil {
				return nil, fmt.Errorf("agent %s: %w", profile.ID, err)
			}
			registry.Register(tool)

		case "plugin":
			if !allowPlugins {
				return nil, fmt.Errorf("agent %s: tool %q: plugin tools are disabled (set allow_plugins = true)", profile.ID, decl.Name)
			}
			tool, err := tools.LoadPlugin(decl.Name, decl.Description, decl.Path, decl.Symbol)
			if err != nil {
				return nil, fmt.Errorf("agent %s: %w", profile.ID, err)
			}
			registry.Register(tool)

		case "http":
			registry.Register(tools.NewHTTP(tools.HTTPConfig{
				Name:        decl.Name,
				Description: decl.Description,
				URL:         decl.URL,
				Method:      decl.Method,
				Headers:     decl.Headers,
				Timeout:     time.Duration(decl.TimeoutSeconds) * time.Second,
			}, store))

		default:
			return nil, fmt.Errorf("agent %s: tool %q: unknown type %q", profile.ID, decl.Name, decl.Type)
		}
	}

	return registry, nil
}

func builtin(name, sandboxRoot string) (Tool, error) {
	switch name {
	case "file_reader":
		return tools.NewFileReader(sandboxRoot), nil
	case "file_writer":
		return tools.NewFileWriter(sandboxRoot), nil
	case "file_list":
		return tools.NewFileList(sandboxRoot), nil
	default:
		return nil, fmt.Errorf("unknown builtin tool %q", name)
	}
}
