package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hutch/internal/history"
)

func fastRetry(p Provider, maxTries int) Provider {
	return &RetryProvider{inner: p, maxTries: uint(maxTries), interval: time.Millisecond}
}

type countingProvider struct {
	calls int
	fn    func(calls int) (*Result, error)
}

func (p *countingProvider) Chat(ctx context.Context, msgs []history.Message, tools []ToolDef) (*Result, error) {
	p.calls++
	return p.fn(p.calls)
}

func TestWithRetry_RetriesTransientFailures(t *testing.T) {
	inner := &countingProvider{fn: func(calls int) (*Result, error) {
		if calls < 3 {
			return nil, errors.New("connection reset by peer")
		}
		return &Result{Text: "ok"}, nil
	}}

	res, err := fastRetry(inner, 5).Chat(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Text)
	assert.Equal(t, 3, inner.calls)
}

func TestWithRetry_GivesUpAfterMaxTries(t *testing.T) {
	inner := &countingProvider{fn: func(int) (*Result, error) {
		return nil, errors.New("connection reset by peer")
	}}

	_, err := fastRetry(inner, 3).Chat(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Equal(t, 3, inner.calls)
}

func TestWithRetry_CancellationIsPermanent(t *testing.T) {
	inner := &countingProvider{fn: func(int) (*Result, error) {
		return nil, context.Canceled
	}}

	_, err := fastRetry(inner, 5).Chat(context.Background(), nil, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, inner.calls)
}

func TestLazy_DefersAndCachesConstruction(t *testing.T) {
	builds := 0
	inner := &countingProvider{fn: func(int) (*Result, error) {
		return &Result{Text: "hi"}, nil
	}}
	p := Lazy(func() (Provider, error) {
		builds++
		return inner, nil
	})

	assert.Equal(t, 0, builds)

	_, err := p.Chat(context.Background(), nil, nil)
	require.NoError(t, err)
	_, err = p.Chat(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, builds)
	assert.Equal(t, 2, inner.calls)
}

func TestLazy_FailedConstructionIsNotCached(t *testing.T) {
	builds := 0
	p := Lazy(func() (Provider, error) {
		builds++
		if builds == 1 {
			return nil, errors.New("secret \"OPENAI_API_KEY\" not found")
		}
		return &countingProvider{fn: func(int) (*Result, error) {
			return &Result{Text: "recovered"}, nil
		}}, nil
	})

	_, err := p.Chat(context.Background(), nil, nil)
	require.Error(t, err)

	res, err := p.Chat(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "recovered", res.Text)
	assert.Equal(t, 2, builds)
}

func TestForProvider_UnknownTag(t *testing.T) {
	_, err := ForProvider("bedrock", Options{Model: "m"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")

	for _, tag := range []string{"openai", "anthropic", "ollama"} {
		assert.True(t, KnownProvider(tag), tag)
		_, err := ForProvider(tag, Options{Model: "m"})
		assert.NoError(t, err, tag)
	}
}
