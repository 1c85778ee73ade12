// Package config loads the runtime configuration and per-agent profile
// documents. All validation failures here are fatal at load time; no
// chat can start against a malformed configuration.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

type Config struct {
	AgentsDir    string        `toml:"agents_dir"`
	SecretsFile  string        `toml:"secrets_file"`
	AllowPlugins bool          `toml:"allow_plugins"`
	History      HistoryConfig `toml:"history"`
	Engine       EngineConfig  `toml:"engine"`
	Trace        TraceConfig   `toml:"trace"`
}

type HistoryConfig struct {
	Store string `toml:"store"` // file or sqlite
	Path  string `toml:"path"`  // directory (file) or database path (sqlite)
}

type EngineConfig struct {
	// MaxIterations caps model calls per chat turn. Hard circuit
	// breaker against runaway tool-calling cycles.
	MaxIterations         int `toml:"max_iterations"`
	MaxRetries            int `toml:"max_retries"`
	RequestTimeoutSeconds int `toml:"request_timeout_seconds"`
}

type TraceConfig struct {
	Enabled  bool   `toml:"enabled"`
	Endpoint string `toml:"endpoint"`
	URLPath  string `toml:"url_path"`
	APIKey   string `toml:"api_key"`
}

// Load reads the runtime config from path, falling back to defaults
// when the file does not exist.
func Load(path string) (*Config, error) {
	cfg := &Config{
		AgentsDir:   "agents",
		SecretsFile: ".env",
		History: HistoryConfig{
			Store: "file",
			Path:  "history",
		},
		Engine: EngineConfig{
			MaxIterations:         10,
			MaxRetries:            3,
			RequestTimeoutSeconds: 120,
		},
	}

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.History.Store {
	case "file", "sqlite":
	default:
		return fmt.Errorf("history.store must be file or sqlite, got %q", c.History.Store)
	}
	if c.Engine.MaxIterations < 1 {
		return fmt.Errorf("engine.max_iterations must be at least 1")
	}
	if c.Engine.MaxRetries < 1 {
		return fmt.Errorf("engine.max_retries must be at least 1")
	}
	return nil
}
