package llm

import (
	"context"
	"sync"

	"hutch/internal/history"
)

// LazyProvider defers construction of the underlying adapter until the
// first Chat call. Credentials are therefore resolved only at the
// moment a network client needs them: an agent whose secret happens to
// be missing still loads, and the miss surfaces per call instead of
// failing startup. Successful construction is cached; failures are not,
// so a secret that appears later is picked up on the next call.
type LazyProvider struct {
	build func() (Provider, error)

	mu    sync.Mutex
	inner Provider
}

func Lazy(build func() (Provider, error)) *LazyProvider {
	return &LazyProvider{build: build}
}

func (l *LazyProvider) Chat(ctx context.Context, msgs []history.Message, tools []ToolDef) (*Result, error) {
	p, err := l.resolve()
	if err != nil {
		return nil, err
	}
	return p.Chat(ctx, msgs, tools)
}

func (l *LazyProvider) resolve() (Provider, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inner != nil {
		return l.inner, nil
	}
	p, err := l.build()
	if err != nil {
		return nil, err
	}
	l.inner = p
	return p, nil
}
