package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hutch/internal/config"
	"hutch/internal/history"
	"hutch/internal/llm"
	"hutch/internal/secrets"
)

func testRuntime(t *testing.T, provider llm.Provider) *Runtime {
	t.Helper()
	profile := financeProfile(t, t.TempDir())
	registry := financeRegistry(t, profile.Sandbox)
	store := history.NewFileStore(t.TempDir())

	return &Runtime{
		engines:  map[string]*Engine{"finance": NewEngine(profile, provider, store, registry, 10)},
		profiles: map[string]*config.AgentProfile{"finance": profile},
	}
}

func TestRuntime_UnknownAgent(t *testing.T) {
	rt := testRuntime(t, &scriptedProvider{})

	_, err := rt.Chat(context.Background(), "ops", "alice", "hi")
	require.ErrorIs(t, err, ErrAgentNotFound)

	err = rt.Reset(context.Background(), "ops")
	assert.ErrorIs(t, err, ErrAgentNotFound)
}

func TestRuntime_CallerAllowList(t *testing.T) {
	provider := &scriptedProvider{results: []*llm.Result{{Text: "hello"}}}
	rt := testRuntime(t, provider)

	_, err := rt.Chat(context.Background(), "finance", "mallory", "hi")
	require.ErrorIs(t, err, ErrCallerNotAllowed)
	assert.Equal(t, 0, provider.calls, "denied callers must not reach the model")

	reply, err := rt.Chat(context.Background(), "finance", "alice", "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello", reply)
}

func TestNewRuntime_BuildsEnginePerProfile(t *testing.T) {
	cfg, err := config.Load("nonexistent.toml")
	require.NoError(t, err)

	profiles := []*config.AgentProfile{
		financeProfile(t, t.TempDir()),
		{
			ID:             "support",
			SystemPrompt:   "You answer support tickets.",
			Sandbox:        t.TempDir(),
			AllowedCallers: []string{"bob"},
			Model:          config.ModelBinding{Provider: "ollama", Model: "llama3"},
		},
	}

	rt, err := NewRuntime(cfg, profiles, secrets.FromMap(nil), history.NewFileStore(t.TempDir()))
	require.NoError(t, err)
	assert.Equal(t, []string{"finance", "support"}, rt.Agents())
}

func TestNewRuntime_MissingSecretDoesNotFailStartup(t *testing.T) {
	cfg, err := config.Load("nonexistent.toml")
	require.NoError(t, err)

	// The finance profile references OPENAI_API_KEY; the store is empty.
	rt, err := NewRuntime(cfg, []*config.AgentProfile{financeProfile(t, t.TempDir())},
		secrets.FromMap(nil), history.NewFileStore(t.TempDir()))
	require.NoError(t, err)

	// The miss surfaces on the first call instead.
	_, err = rt.Chat(context.Background(), "finance", "alice", "hi")
	require.Error(t, err)
	var nf *secrets.NotFoundError
	assert.ErrorAs(t, err, &nf)
}
