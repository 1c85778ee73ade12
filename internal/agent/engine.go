package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"hutch/internal/config"
	"hutch/internal/history"
	"hutch/internal/llm"
	"hutch/internal/sandbox"
	"hutch/internal/trace"
)

// ErrIterationLimit is the loop's only abnormal-but-non-fatal
// termination: the model kept requesting tools until the cap.
var ErrIterationLimit = errors.New("iteration limit exceeded")

// Engine runs the conversation loop for one agent. One Chat call runs
// to completion before the next may begin; engines for different
// agents share nothing mutable and may run concurrently.
type Engine struct {
	profile       *config.AgentProfile
	provider      llm.Provider
	store         history.Store
	registry      *Registry
	tools         []llm.ToolDef
	maxIterations int
	emit          func(Event)

	mu  sync.Mutex
	log []history.Message // nil until first load
}

type EngineOption func(*Engine)

// WithEmit registers an observer for tool activity events.
func WithEmit(fn func(Event)) EngineOption {
	return func(e *Engine) { e.emit = fn }
}

func NewEngine(profile *config.AgentProfile, provider llm.Provider, store history.Store, registry *Registry, maxIterations int, opts ...EngineOption) *Engine {
	e := &Engine{
		profile:       profile,
		provider:      provider,
		store:         store,
		registry:      registry,
		maxIterations: maxIterations,
	}
	for _, opt := range opts {
		opt(e)
	}
	for _, t := range registry.All() {
		e.tools = append(e.tools, llm.ToolDef{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.InputSchema(),
		})
	}
	return e
}

// Chat appends the user message and drives the bounded loop: call the
// model, execute any requested tools in order, feed results back, and
// stop on the first non-empty text reply. The log is persisted only on
// a completed exchange; on a model failure or iteration-limit exit the
// in-memory log rolls back to its pre-turn state so memory and disk
// stay in step.
func (e *Engine) Chat(ctx context.Context, message string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	truncated := message
	if len(truncated) > 200 {
		truncated = truncated[:200]
	}
	ctx, span := trace.Tracer().Start(ctx, "agent.chat",
		oteltrace.WithAttributes(
			attribute.String("agent.id", e.profile.ID),
			attribute.String("turn.id", uuid.NewString()),
			attribute.String("user.message", truncated),
		),
	)
	defer span.End()

	if e.log == nil {
		log, err := e.store.Load(ctx, e.profile.ID, e.profile.SystemPrompt)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return "", err
		}
		e.log = log
	}

	base := len(e.log)
	e.log = append(e.log, history.Message{Role: history.RoleUser, Content: message})

	for i := 0; i < e.maxIterations; i++ {
		llmCtx, llmSpan := trace.Tracer().Start(ctx, "llm.call",
			oteltrace.WithAttributes(attribute.Int("llm.iteration", i)),
		)
		res, err := e.provider.Chat(llmCtx, e.log, e.tools)
		if err != nil {
			llmSpan.RecordError(err)
			llmSpan.SetStatus(codes.Error, err.Error())
			llmSpan.End()
			span.SetStatus(codes.Error, err.Error())
			e.log = e.log[:base]
			return "", fmt.Errorf("model call: %w", err)
		}
		llmSpan.End()

		if res.Text != "" {
			e.log = append(e.log, history.Message{Role: history.RoleAssistant, Content: res.Text})
			if err := e.store.Save(ctx, e.profile.ID, e.log); err != nil {
				slog.Warn("failed to persist conversation", "agent", e.profile.ID, "error", err)
			}
			return res.Text, nil
		}

		if len(res.Calls) == 0 {
			slog.Debug("model returned neither text nor tool calls", "agent", e.profile.ID, "iteration", i)
			continue
		}

		// Execute the whole round before re-querying the model, in the
		// order received, so tool-result ordering is deterministic
		// relative to correlation ids.
		for _, call := range res.Calls {
			e.emitEvent(Event{Type: EventToolCall, Data: map[string]string{
				"name":      call.Name,
				"arguments": call.Arguments,
			}})

			result := e.execute(ctx, call)

			e.emitEvent(Event{Type: EventToolResult, Data: map[string]string{
				"name":    call.Name,
				"content": result,
			}})
			e.log = append(e.log, history.Message{
				Role:    history.RoleTool,
				Content: result,
				CallID:  call.ID,
				Invocation: &history.Invocation{
					ID:        call.ID,
					Name:      call.Name,
					Arguments: call.Arguments,
				},
			})
		}
	}

	span.SetStatus(codes.Error, ErrIterationLimit.Error())
	e.log = e.log[:base]
	return "", ErrIterationLimit
}

// execute runs one tool call inside the failure boundary: unknown
// names, returned errors, and panics all become textual error results
// so the conversation can continue.
func (e *Engine) execute(ctx context.Context, call llm.ToolCall) (result string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("tool panicked", "agent", e.profile.ID, "tool", call.Name, "panic", r)
			result = fmt.Sprintf("error: tool %s panicked: %v", call.Name, r)
		}
	}()

	tool, ok := e.registry.Get(call.Name)
	if !ok {
		slog.Warn("unknown tool call", "agent", e.profile.ID, "tool", call.Name)
		return "error: unknown tool"
	}

	toolCtx, toolSpan := trace.Tracer().Start(ctx, "tool."+call.Name)
	defer toolSpan.End()

	out, err := tool.Execute(toolCtx, call.Arguments)
	if err != nil {
		toolSpan.RecordError(err)
		var pv *sandbox.PathViolationError
		if errors.As(err, &pv) {
			slog.Warn("tool call blocked by sandbox", "agent", e.profile.ID, "tool", call.Name, "path", pv.Path)
		} else {
			slog.Warn("tool execution failed", "agent", e.profile.ID, "tool", call.Name, "error", err)
		}
		return "error: " + err.Error()
	}
	return out
}

// Reset discards the conversation and reseeds it from the configured
// system instruction, persisting immediately. Idempotent.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	log, err := e.store.Reset(ctx, e.profile.ID, e.profile.SystemPrompt)
	if err != nil {
		return err
	}
	e.log = log
	return nil
}

func (e *Engine) emitEvent(ev Event) {
	if e.emit != nil {
		e.emit(ev)
	}
}
