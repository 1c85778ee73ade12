package agent

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hutch/internal/config"
	"hutch/internal/secrets"
)

func TestBuildRegistry_Builtins(t *testing.T) {
	profile := &config.AgentProfile{
		ID:           "finance",
		SystemPrompt: "p",
		Sandbox:      t.TempDir(),
		Tools: []config.ToolDecl{
			{Type: "builtin", Name: "file_reader"},
			{Type: "builtin", Name: "file_writer"},
			{Type: "builtin", Name: "file_list"},
		},
	}

	registry, err := BuildRegistry(profile, secrets.FromMap(nil), false)
	require.NoError(t, err)

	for _, name := range []string{"file_reader", "file_writer", "file_list"} {
		tool, ok := registry.Get(name)
		require.True(t, ok, name)
		assert.Equal(t, name, tool.Name())
		assert.NotEmpty(t, tool.InputSchema())
	}

	// Deterministic schema order for the model.
	all := registry.All()
	require.Len(t, all, 3)
	assert.Equal(t, "file_list", all[0].Name())
	assert.Equal(t, "file_reader", all[1].Name())
	assert.Equal(t, "file_writer", all[2].Name())
}

func TestBuildRegistry_UnknownBuiltinIsFatal(t *testing.T) {
	profile := &config.AgentProfile{
		ID:      "finance",
		Sandbox: t.TempDir(),
		Tools:   []config.ToolDecl{{Type: "builtin", Name: "shell"}},
	}

	_, err := BuildRegistry(profile, secrets.FromMap(nil), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown builtin tool")
}

func TestBuildRegistry_UnknownTypeIsFatal(t *testing.T) {
	profile := &config.AgentProfile{
		ID:      "finance",
		Sandbox: t.TempDir(),
		Tools:   []config.ToolDecl{{Type: "grpc", Name: "x"}},
	}

	_, err := BuildRegistry(profile, secrets.FromMap(nil), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown type")
}

func TestBuildRegistry_PluginsRequireOptIn(t *testing.T) {
	profile := &config.AgentProfile{
		ID:      "finance",
		Sandbox: t.TempDir(),
		Tools:   []config.ToolDecl{{Type: "plugin", Name: "x", Path: "x.so", Symbol: "Run"}},
	}

	_, err := BuildRegistry(profile, secrets.FromMap(nil), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "allow_plugins")
}

func TestBuildRegistry_HTTPToolCallsThroughWithSecretHeader(t *testing.T) {
	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"temp": 21}`))
	}))
	defer server.Close()

	profile := &config.AgentProfile{
		ID:      "finance",
		Sandbox: t.TempDir(),
		Tools: []config.ToolDecl{{
			Type:        "http",
			Name:        "weather",
			Description: "Current weather for a city",
			URL:         server.URL + "/v1/weather/{city}",
			Headers:     map[string]string{"Authorization": "WEATHER_TOKEN"},
		}},
	}
	store := secrets.FromMap(map[string]string{"WEATHER_TOKEN": "Bearer tok-1"})

	registry, err := BuildRegistry(profile, store, false)
	require.NoError(t, err)

	tool, ok := registry.Get("weather")
	require.True(t, ok)

	// Schema is derived from the URL template placeholders.
	schema := tool.InputSchema()
	props := schema["properties"].(map[string]any)
	assert.Contains(t, props, "city")

	out, err := tool.Execute(context.Background(), `{"city":"oslo"}`)
	require.NoError(t, err)
	assert.Equal(t, `{"temp": 21}`, out)
	assert.Equal(t, "/v1/weather/oslo", gotPath)
	assert.Equal(t, "Bearer tok-1", gotAuth)
}

func TestBuildRegistry_HTTPToolMissingSecretFailsAtCallTime(t *testing.T) {
	profile := &config.AgentProfile{
		ID:      "finance",
		Sandbox: t.TempDir(),
		Tools: []config.ToolDecl{{
			Type:    "http",
			Name:    "weather",
			URL:     "http://127.0.0.1:1/w/{city}",
			Headers: map[string]string{"Authorization": "ABSENT_TOKEN"},
		}},
	}

	// Load succeeds: secrets resolve lazily.
	registry, err := BuildRegistry(profile, secrets.FromMap(nil), false)
	require.NoError(t, err)

	tool, _ := registry.Get("weather")
	_, err = tool.Execute(context.Background(), `{"city":"oslo"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
