package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/openai/openai-go/v3"

	"hutch/internal/history"
)

// RetryProvider retries transient model-communication failures with
// bounded exponential backoff. Exhausted retries surface to the caller.
type RetryProvider struct {
	inner    Provider
	maxTries uint
	interval time.Duration
}

// WithRetry wraps p so each Chat is attempted up to maxTries times.
func WithRetry(p Provider, maxTries int) Provider {
	if maxTries < 1 {
		maxTries = 1
	}
	return &RetryProvider{inner: p, maxTries: uint(maxTries), interval: 500 * time.Millisecond}
}

func (r *RetryProvider) Chat(ctx context.Context, msgs []history.Message, tools []ToolDef) (*Result, error) {
	attempt := 0
	op := func() (*Result, error) {
		attempt++
		res, err := r.inner.Chat(ctx, msgs, tools)
		if err != nil {
			if !retryable(err) {
				return nil, backoff.Permanent(err)
			}
			slog.Warn("model call failed, will retry", "attempt", attempt, "error", err)
			return nil, err
		}
		return res, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.interval
	bo.MaxInterval = 10 * time.Second

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(r.maxTries),
	)
}

// retryable classifies model-communication failures. API responses are
// retried on throttling and server errors; transport-level failures
// (connection reset, per-call timeout) are retried; everything else,
// including caller cancellation, is permanent.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		return apierr.StatusCode == 408 || apierr.StatusCode == 429 || apierr.StatusCode >= 500
	}
	return true
}
