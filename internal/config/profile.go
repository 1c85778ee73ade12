package config

import (
	"fmt"
	"net/http"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"hutch/internal/llm"
)

// AgentProfile is one agent's immutable configuration: model binding,
// sandbox, tool set, and caller allow-list. Loaded once per process,
// never mutated at runtime.
type AgentProfile struct {
	ID             string       `toml:"id"`
	Name           string       `toml:"name"`
	SystemPrompt   string       `toml:"system_prompt"`
	Sandbox        string       `toml:"sandbox"`
	AllowedCallers []string     `toml:"allowed_callers"`
	Model          ModelBinding `toml:"model"`
	Tools          []ToolDecl   `toml:"tools"`
}

// ModelBinding describes which backend serves the agent. APIKey is a
// secret reference name, resolved lazily at call time, never a value.
type ModelBinding struct {
	Provider    string   `toml:"provider"`
	Model       string   `toml:"model"`
	APIKey      string   `toml:"api_key"`
	BaseURL     string   `toml:"base_url"`
	Temperature *float64 `toml:"temperature"`
	MaxTokens   int      `toml:"max_tokens"`
}

// ToolDecl declares one tool binding. Type selects the variant:
// builtin (fixed table, sandbox-bound), plugin (Go plugin, full host
// privilege, requires the allow_plugins opt-in), or http (outbound
// request wrapper with secret-resolved headers).
type ToolDecl struct {
	Type        string            `toml:"type"`
	Name        string            `toml:"name"`
	Description string            `toml:"description"`

	// plugin
	Path   string `toml:"path"`
	Symbol string `toml:"symbol"`

	// http
	URL            string            `toml:"url"`
	Method         string            `toml:"method"`
	TimeoutSeconds int               `toml:"timeout_seconds"`
	Headers        map[string]string `toml:"headers"`
}

var idPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// LoadProfiles reads every *.toml document in dir, validates each, and
// rejects duplicate agent ids. Result is sorted by id.
func LoadProfiles(dir string) ([]*AgentProfile, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.toml"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no agent profiles found in %s", dir)
	}

	seen := make(map[string]string)
	var profiles []*AgentProfile
	for _, path := range paths {
		var p AgentProfile
		if _, err := toml.DecodeFile(path, &p); err != nil {
			return nil, fmt.Errorf("parsing profile %s: %w", path, err)
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("profile %s: %w", path, err)
		}
		if prev, ok := seen[p.ID]; ok {
			return nil, fmt.Errorf("profile %s: duplicate agent id %q (also in %s)", path, p.ID, prev)
		}
		seen[p.ID] = path
		profiles = append(profiles, &p)
	}

	slices.SortFunc(profiles, func(a, b *AgentProfile) int {
		return strings.Compare(a.ID, b.ID)
	})
	return profiles, nil
}

func (p *AgentProfile) Validate() error {
	if !idPattern.MatchString(p.ID) {
		return fmt.Errorf("invalid agent id %q: lowercase alphanumeric and hyphen only", p.ID)
	}
	if p.SystemPrompt == "" {
		return fmt.Errorf("agent %s: system_prompt is required", p.ID)
	}
	if p.Sandbox == "" {
		return fmt.Errorf("agent %s: sandbox is required", p.ID)
	}
	if len(p.AllowedCallers) == 0 {
		return fmt.Errorf("agent %s: allowed_callers is required", p.ID)
	}
	if !llm.KnownProvider(p.Model.Provider) {
		return fmt.Errorf("agent %s: unknown provider %q", p.ID, p.Model.Provider)
	}
	if p.Model.Model == "" {
		return fmt.Errorf("agent %s: model.model is required", p.ID)
	}
	if p.Model.APIKey == "" && p.Model.Provider != "ollama" {
		return fmt.Errorf("agent %s: model.api_key secret reference is required for provider %q", p.ID, p.Model.Provider)
	}

	names := make(map[string]bool)
	for i, t := range p.Tools {
		if t.Name == "" {
			return fmt.Errorf("agent %s: tool %d: name is required", p.ID, i)
		}
		if names[t.Name] {
			return fmt.Errorf("agent %s: duplicate tool name %q", p.ID, t.Name)
		}
		names[t.Name] = true

		switch t.Type {
		case "builtin":
		case "plugin":
			if t.Path == "" || t.Symbol == "" {
				return fmt.Errorf("agent %s: plugin tool %q: path and symbol are required", p.ID, t.Name)
			}
		case "http":
			if t.URL == "" {
				return fmt.Errorf("agent %s: http tool %q: url is required", p.ID, t.Name)
			}
			switch t.Method {
			case "", http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
			default:
				return fmt.Errorf("agent %s: http tool %q: unsupported method %q", p.ID, t.Name, t.Method)
			}
		default:
			return fmt.Errorf("agent %s: tool %q: unknown type %q", p.ID, t.Name, t.Type)
		}
	}
	return nil
}

// AllowsCaller reports whether caller is on the agent's allow-list.
func (p *AgentProfile) AllowsCaller(caller string) bool {
	return slices.Contains(p.AllowedCallers, caller)
}
