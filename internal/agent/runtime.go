package agent

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"hutch/internal/config"
	"hutch/internal/history"
	"hutch/internal/llm"
	"hutch/internal/secrets"
)

var (
	ErrAgentNotFound    = errors.New("agent not found")
	ErrCallerNotAllowed = errors.New("caller not allowed")
)

// Runtime is the caller surface: it owns one engine per configured
// agent and enforces the per-agent caller allow-list before any
// conversation state is touched.
type Runtime struct {
	engines  map[string]*Engine
	profiles map[string]*config.AgentProfile
}

func NewRuntime(cfg *config.Config, profiles []*config.AgentProfile, sec *secrets.Store, store history.Store, opts ...EngineOption) (*Runtime, error) {
	rt := &Runtime{
		engines:  make(map[string]*Engine, len(profiles)),
		profiles: make(map[string]*config.AgentProfile, len(profiles)),
	}

	for _, p := range profiles {
		registry, err := BuildRegistry(p, sec, cfg.AllowPlugins)
		if err != nil {
			return nil, err
		}
		provider := buildProvider(p, sec, cfg.Engine)
		rt.engines[p.ID] = NewEngine(p, provider, store, registry, cfg.Engine.MaxIterations, opts...)
		rt.profiles[p.ID] = p
	}
	return rt, nil
}

// buildProvider defers credential resolution to the first model call:
// a missing secret surfaces as a per-call error instead of failing
// startup for every agent in the process.
func buildProvider(p *config.AgentProfile, sec *secrets.Store, eng config.EngineConfig) llm.Provider {
	binding := p.Model
	return llm.Lazy(func() (llm.Provider, error) {
		var key string
		if binding.APIKey != "" {
			var err error
			key, err = sec.Get(binding.APIKey)
			if err != nil {
				return nil, err
			}
		}
		inner, err := llm.ForProvider(binding.Provider, llm.Options{
			BaseURL:     binding.BaseURL,
			APIKey:      key,
			Model:       binding.Model,
			Temperature: binding.Temperature,
			MaxTokens:   binding.MaxTokens,
			Timeout:     time.Duration(eng.RequestTimeoutSeconds) * time.Second,
		})
		if err != nil {
			return nil, err
		}
		return llm.WithRetry(inner, eng.MaxRetries), nil
	})
}

// Chat routes one utterance to the named agent and returns its reply.
func (r *Runtime) Chat(ctx context.Context, agentID, caller, message string) (string, error) {
	eng, ok := r.engines[agentID]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrAgentNotFound, agentID)
	}
	if !r.profiles[agentID].AllowsCaller(caller) {
		return "", fmt.Errorf("%w: %q may not use agent %s", ErrCallerNotAllowed, caller, agentID)
	}
	return eng.Chat(ctx, message)
}

// Reset reseeds the named agent's conversation log.
func (r *Runtime) Reset(ctx context.Context, agentID string) error {
	eng, ok := r.engines[agentID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAgentNotFound, agentID)
	}
	return eng.Reset(ctx)
}

// Agents returns the configured agent ids in sorted order.
func (r *Runtime) Agents() []string {
	ids := make([]string, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
