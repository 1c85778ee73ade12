package main

import (
	"context"
	"fmt"
	"log/slog"

	"hutch/internal/agent"
	"hutch/internal/config"
	"hutch/internal/history"
	"hutch/internal/secrets"
	"hutch/internal/trace"
)

// buildRuntime loads configuration, secrets, and profiles, opens the
// history backend, and assembles the runtime. The returned shutdown
// func flushes tracing and closes the store.
func buildRuntime(ctx context.Context, opts ...agent.EngineOption) (*agent.Runtime, func(context.Context), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	sec, err := secrets.Load(cfg.SecretsFile)
	if err != nil {
		return nil, nil, err
	}

	profiles, err := config.LoadProfiles(cfg.AgentsDir)
	if err != nil {
		return nil, nil, err
	}

	var cleanup []func(context.Context)

	var store history.Store
	switch cfg.History.Store {
	case "sqlite":
		s, err := history.OpenSQLite(cfg.History.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening history database: %w", err)
		}
		cleanup = append(cleanup, func(context.Context) { s.Close() })
		store = s
	default:
		store = history.NewFileStore(cfg.History.Path)
	}

	if cfg.Trace.Enabled {
		shutdown, err := trace.Init(ctx, trace.Config{
			Endpoint: cfg.Trace.Endpoint,
			URLPath:  cfg.Trace.URLPath,
			APIKey:   cfg.Trace.APIKey,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("initializing tracing: %w", err)
		}
		cleanup = append(cleanup, func(ctx context.Context) {
			if err := shutdown(ctx); err != nil {
				slog.Warn("trace shutdown failed", "error", err)
			}
		})
	}

	rt, err := agent.NewRuntime(cfg, profiles, sec, store, opts...)
	if err != nil {
		return nil, nil, err
	}

	shutdown := func(ctx context.Context) {
		for i := len(cleanup) - 1; i >= 0; i-- {
			cleanup[i](ctx)
		}
	}
	return rt, shutdown, nil
}
